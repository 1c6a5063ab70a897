package qa

import (
	"regexp"
	"sort"
	"strings"
)

// Caps for the report's per-list detail, mirroring the report consumers'
// expectations. Counts in the summary fields are never capped.
const (
	maxDanglingNodes = 200
	maxMissingLinks  = 200
)

// binomialRe accepts binomial species names: a capitalized word (optionally
// abbreviated with a trailing period) followed by a lowercase epithet, e.g.
// "Homo sapiens" or "A. thaliana".
var binomialRe = regexp.MustCompile(`^[A-Z][a-z]*\.?\s+[a-z][a-z-]+$`)

// Report is the connectivity QA summary for one extracted record.
type Report struct {
	Meta                  Meta          `json:"meta"`
	NNodes                int           `json:"n_nodes"`
	NEdges                int           `json:"n_edges"`
	NComponents           int           `json:"n_components"`
	MainComponentSize     int           `json:"main_component_size"`
	OrphanComponents      []Component   `json:"orphan_components"`
	DanglingNodes         []DegreeEntry `json:"dangling_nodes"`
	MissingLinksSuspected []MissingLink `json:"missing_links_suspected"`
	SpeciesViolations     []string      `json:"species_violations"`
	Notes                 []string      `json:"notes"`
}

// Component is one connected component, nodes sorted lexicographically.
type Component struct {
	Size  int      `json:"size"`
	Nodes []string `json:"nodes"`
}

// DegreeEntry pairs a node with its degree.
type DegreeEntry struct {
	Node   string `json:"node"`
	Degree int    `json:"degree"`
}

// MissingLink is a heuristic hint about a declared entity with no edges.
type MissingLink struct {
	Hint string `json:"hint"`
	Node string `json:"node"`
}

// Analyze computes the QA report for a built graph. Declared entities are
// force-inserted as (possibly isolated) nodes first, so unused declarations
// surface as degree-zero nodes rather than disappearing.
func Analyze(g Graph, ents Entities, meta Meta) *Report {
	for _, group := range ents.byKind() {
		for _, name := range group.names {
			g.AddNode(NodeID(group.kind, name))
		}
	}

	comps := components(g)
	mainSize := 0
	if len(comps) > 0 {
		mainSize = comps[0].Size
	}

	var orphans []Component
	if len(comps) > 1 {
		orphans = comps[1:]
	}

	var dangling []DegreeEntry
	for id := range g {
		if d := g.Degree(id); d <= 1 {
			dangling = append(dangling, DegreeEntry{Node: id, Degree: d})
		}
	}
	sort.Slice(dangling, func(i, j int) bool {
		if dangling[i].Degree != dangling[j].Degree {
			return dangling[i].Degree < dangling[j].Degree
		}
		return dangling[i].Node < dangling[j].Node
	})
	if len(dangling) > maxDanglingNodes {
		dangling = dangling[:maxDanglingNodes]
	}

	var missing []MissingLink
	for _, group := range ents.byKind() {
		names := append([]string(nil), group.names...)
		sort.Strings(names)
		for _, name := range names {
			id := NodeID(group.kind, name)
			if g.Degree(id) == 0 {
				missing = append(missing, MissingLink{
					Hint: group.kind + " appears in entities but is not connected to any process/location",
					Node: id,
				})
			}
		}
	}
	if len(missing) > maxMissingLinks {
		missing = missing[:maxMissingLinks]
	}

	var badSpecies []string
	for _, s := range ents.Species {
		if !binomialRe.MatchString(strings.TrimSpace(s)) {
			badSpecies = append(badSpecies, s)
		}
	}

	nEdges := 0
	for id := range g {
		nEdges += g.Degree(id)
	}
	nEdges /= 2

	return &Report{
		Meta:                  meta,
		NNodes:                len(g),
		NEdges:                nEdges,
		NComponents:           len(comps),
		MainComponentSize:     mainSize,
		OrphanComponents:      orphans,
		DanglingNodes:         dangling,
		MissingLinksSuspected: missing,
		SpeciesViolations:     badSpecies,
		Notes: []string{
			"Orphan components are any connected component not equal to the largest component.",
			"Dangling nodes are degree <= 1 and often indicate missing links or incomplete extraction.",
		},
	}
}

// components returns the connected components of g via BFS, largest first.
// Equal-sized components are ordered by their smallest node id, and node
// lists are sorted, so the output is deterministic for a given graph.
func components(g Graph) []Component {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visited := make(map[string]struct{}, len(g))
	var comps []Component

	for _, start := range ids {
		if _, done := visited[start]; done {
			continue
		}
		visited[start] = struct{}{}

		queue := []string{start}
		var nodes []string
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			nodes = append(nodes, u)
			for v := range g[u] {
				if _, done := visited[v]; done {
					continue
				}
				visited[v] = struct{}{}
				queue = append(queue, v)
			}
		}

		sort.Strings(nodes)
		comps = append(comps, Component{Size: len(nodes), Nodes: nodes})
	}

	sort.SliceStable(comps, func(i, j int) bool {
		if comps[i].Size != comps[j].Size {
			return comps[i].Size > comps[j].Size
		}
		return comps[i].Nodes[0] < comps[j].Nodes[0]
	})
	return comps
}
