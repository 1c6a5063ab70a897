package qa

import "github.com/pwmlx/pwmlx/record"

// Entities holds the declared entity names of a record, grouped by
// category. Names are trimmed and deduplicated.
type Entities struct {
	Compounds            []string
	Proteins             []string
	NucleicAcids         []string
	ElementCollections   []string
	ProteinComplexes     []string
	Species              []string
	CellTypes            []string
	Tissues              []string
	SubcellularLocations []string
}

// CollectEntities gathers declared entity names from a record. Missing or
// malformed categories yield empty groups.
func CollectEntities(rec record.Record) Entities {
	ents := rec.Section("entities")
	return Entities{
		Compounds:            entityNames(ents["compounds"]),
		Proteins:             entityNames(ents["proteins"]),
		NucleicAcids:         entityNames(ents["nucleic_acids"]),
		ElementCollections:   entityNames(ents["element_collections"]),
		ProteinComplexes:     entityNames(ents["protein_complexes"]),
		Species:              entityNames(ents["species"]),
		CellTypes:            entityNames(ents["cell_types"]),
		Tissues:              entityNames(ents["tissues"]),
		SubcellularLocations: entityNames(ents["subcellular_locations"]),
	}
}

// byKind returns the graph-bearing groups in a fixed category order.
func (e Entities) byKind() []struct {
	kind  string
	names []string
} {
	return []struct {
		kind  string
		names []string
	}{
		{KindCompound, e.Compounds},
		{KindProtein, e.Proteins},
		{KindNucleicAcid, e.NucleicAcids},
		{KindElementCollection, e.ElementCollections},
		{KindProteinComplex, e.ProteinComplexes},
	}
}

// entityNames extracts trimmed, deduplicated "name" fields from a list of
// entity objects, preserving first-seen order.
func entityNames(v any) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, item := range safeList(v) {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := stringField(m, "name")
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
