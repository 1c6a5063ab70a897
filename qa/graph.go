// Package qa builds a connectivity graph over an extracted pathway record
// and reports structural problems: orphan components, dangling nodes,
// declared-but-unused entities, and malformed species names.
package qa

import (
	"fmt"
	"strings"

	"github.com/pwmlx/pwmlx/record"
)

// Node kinds used in graph node identifiers.
const (
	KindCompound          = "compound"
	KindProtein           = "protein"
	KindNucleicAcid       = "nucleic_acid"
	KindElementCollection = "element_collection"
	KindProteinComplex    = "protein_complex"
	KindReaction          = "reaction"
	KindTransport         = "transport"
	KindRCT               = "reaction_coupled_transport"
	KindInteraction       = "interaction"
	KindEntity            = "entity"
	KindElement           = "element"
	KindCargo             = "cargo"
)

// Graph is an undirected adjacency set keyed by node id. A node with an
// empty neighbor set is isolated but still part of the graph.
type Graph map[string]map[string]struct{}

// NodeID builds the canonical node identifier for a kind/name pair.
func NodeID(kind, name string) string {
	return kind + ":" + name
}

// AddNode ensures a node exists, possibly with no edges.
func (g Graph) AddNode(id string) {
	if _, ok := g[id]; !ok {
		g[id] = make(map[string]struct{})
	}
}

// AddEdge inserts a symmetric edge. Empty endpoints are ignored.
func (g Graph) AddEdge(a, b string) {
	if a == "" || b == "" {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	g[a][b] = struct{}{}
	g[b][a] = struct{}{}
}

// Degree returns the number of distinct neighbors of a node.
func (g Graph) Degree(id string) int {
	return len(g[id])
}

// Meta counts the process groups that contributed to the graph.
type Meta struct {
	NReactions    int `json:"n_reactions"`
	NTransports   int `json:"n_transports"`
	NInteractions int `json:"n_interactions"`
	NRCTs         int `json:"n_reaction_coupled_transports"`
}

// BuildGraph projects a record's processes onto a typed undirected graph:
//
//	compound        -- reaction    (inputs and outputs)
//	protein_complex -- reaction    (enzymes)
//	rct             -- reaction / transport (referenced by name)
//	element         -- rct / transport     (elements_with_states)
//	cargo           -- transport
//	protein_complex -- transport   (transporters)
//	entity          -- interaction (entity_1 and entity_2)
//
// Unnamed processes get a positional placeholder name ("#1", "#2", ...).
// Malformed sections are skipped, never fatal.
func BuildGraph(rec record.Record) (Graph, Meta) {
	g := Graph{}

	processes := rec.Section("processes")
	reactions := safeList(processes["reactions"])
	transports := safeList(processes["transports"])
	interactions := safeList(processes["interactions"])
	rcts := safeList(processes["reaction_coupled_transports"])

	for i, item := range reactions {
		r, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rid := NodeID(KindReaction, processName(r, i))

		for _, c := range stringList(r["inputs"]) {
			g.AddEdge(NodeID(KindCompound, c), rid)
		}
		for _, c := range stringList(r["outputs"]) {
			g.AddEdge(NodeID(KindCompound, c), rid)
		}
		for _, pc := range enzymeComplexes(r["enzymes"]) {
			g.AddEdge(NodeID(KindProteinComplex, pc), rid)
		}
	}

	for i, item := range rcts {
		rct, ok := item.(map[string]any)
		if !ok {
			continue
		}
		rctID := NodeID(KindRCT, processName(rct, i))

		if rx := stringField(rct, "reaction"); rx != "" {
			g.AddEdge(rctID, NodeID(KindReaction, rx))
		}
		if tx := stringField(rct, "transport"); tx != "" {
			g.AddEdge(rctID, NodeID(KindTransport, tx))
		}
		for _, pc := range enzymeComplexes(rct["enzymes"]) {
			g.AddEdge(NodeID(KindProteinComplex, pc), rctID)
		}
		for _, el := range elementNames(rct["elements_with_states"]) {
			g.AddEdge(NodeID(KindElement, el), rctID)
		}
	}

	for i, item := range transports {
		t, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tid := NodeID(KindTransport, processName(t, i))

		if cargo := stringField(t, "cargo"); cargo != "" {
			g.AddEdge(NodeID(KindCargo, cargo), tid)
		}
		for _, pc := range complexRefs(t["transporters"], "protein_complex") {
			g.AddEdge(NodeID(KindProteinComplex, pc), tid)
		}
		for _, el := range elementNames(t["elements_with_states"]) {
			g.AddEdge(NodeID(KindElement, el), tid)
		}
	}

	for i, item := range interactions {
		inter, ok := item.(map[string]any)
		if !ok {
			continue
		}
		iid := NodeID(KindInteraction, processName(inter, i))

		if e1 := stringField(inter, "entity_1"); e1 != "" {
			g.AddEdge(NodeID(KindEntity, e1), iid)
		}
		if e2 := stringField(inter, "entity_2"); e2 != "" {
			g.AddEdge(NodeID(KindEntity, e2), iid)
		}
	}

	meta := Meta{
		NReactions:    len(reactions),
		NTransports:   len(transports),
		NInteractions: len(interactions),
		NRCTs:         len(rcts),
	}
	return g, meta
}

// processName returns the process's trimmed name or a 1-based positional
// placeholder when the name is missing or blank.
func processName(m map[string]any, idx int) string {
	if name := stringField(m, "name"); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", idx+1)
}

func safeList(v any) []any {
	list, _ := v.([]any)
	return list
}

// stringList returns the trimmed non-empty strings of a list value.
func stringList(v any) []string {
	var out []string
	for _, item := range safeList(v) {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func enzymeComplexes(v any) []string {
	return complexRefs(v, "protein_complex")
}

// complexRefs pulls the named string field out of a list of objects.
func complexRefs(v any, field string) []string {
	var out []string
	for _, item := range safeList(v) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if ref := stringField(m, field); ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

func elementNames(v any) []string {
	var out []string
	for _, item := range safeList(v) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if el := stringField(m, "element"); el != "" {
			out = append(out, el)
		}
	}
	return out
}
