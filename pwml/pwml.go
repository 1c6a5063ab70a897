// Package pwml serializes extracted pathway records into PWML, the
// PathBank-style XML interchange format. Tags are kebab-case, list items
// get singular tags, and dict items without an id are assigned incremental
// integer ids.
package pwml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pwmlx/pwmlx/record"
)

// Header carries the pathway-level fields of the PWML root element.
type Header struct {
	PathwayName string
	Description string
	NamedForID  int
}

// Top-level record sections emitted after the flattened entities, in
// document order.
var topSections = []string{
	"biological_states",
	"element_locations",
	"processes",
	"visualizations",
	"vacuous",
}

// FromRecord renders a record as a PWML document. Map keys are emitted in
// sorted order so the output, including generated ids, is deterministic.
func FromRecord(rec record.Record, hdr Header) ([]byte, error) {
	ids := &idFactory{next: 1}

	root := &element{tag: "super-pathway-visualization"}
	root.child("named-for-id", attr{"type", "integer"}).text = strconv.Itoa(hdr.NamedForID)
	root.child("named-for-type").text = "Pathway"
	name := hdr.PathwayName
	if name == "" {
		name = "Generated Pathway"
	}
	root.child("cached-name").text = name
	root.child("cached-description").text = hdr.Description

	if entities, ok := rec["entities"].(map[string]any); ok {
		for _, key := range sortedKeys(entities) {
			sec := root.child(kebab(key))
			list, ok := entities[key].([]any)
			if !ok {
				continue
			}
			appendListItems(sec, key, list, ids)
		}
	}

	for _, key := range topSections {
		v, ok := rec[key]
		if !ok {
			continue
		}
		sec := root.child(kebab(key))
		switch block := v.(type) {
		case map[string]any:
			appendMap(sec, block, ids)
		case []any:
			appendListItems(sec, key, block, ids)
		default:
			sec.text = scalarText(v)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := root.render(&buf, 0); err != nil {
		return nil, fmt.Errorf("pwml render: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// appendMap converts a JSON object into child elements of parent.
func appendMap(parent *element, m map[string]any, ids *idFactory) {
	for _, key := range sortedKeys(m) {
		tag := kebab(key)
		switch v := m[key].(type) {
		case map[string]any:
			appendMap(parent.child(tag), v, ids)
		case []any:
			appendListItems(parent.child(tag), key, v, ids)
		default:
			child := parent.child(tag)
			if n, ok := integerValue(v); ok && needsIntegerTypeAttr(tag) {
				child.attrs = append(child.attrs, attr{"type", "integer"})
				child.text = strconv.FormatInt(n, 10)
				continue
			}
			child.text = scalarText(v)
		}
	}
}

// appendListItems emits one singular-tagged element per list item. Object
// items missing an "id" field get a generated one.
func appendListItems(container *element, pluralKey string, list []any, ids *idFactory) {
	itemTag := singularize(pluralKey)
	for _, item := range list {
		el := container.child(itemTag)
		obj, ok := item.(map[string]any)
		if !ok {
			el.text = scalarText(item)
			continue
		}
		if _, has := obj["id"]; !has {
			el.child("id", attr{"type", "integer"}).text = strconv.FormatInt(ids.take(), 10)
		}
		appendMap(el, obj, ids)
	}
}

// kebab converts a snake_case key to a kebab-case tag.
func kebab(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
}

// singularSpecials maps plural section keys whose singular form is not
// just the key minus a trailing "s".
var singularSpecials = map[string]string{
	"species":              "species",
	"cell_types":           "cell-type",
	"tissues":              "tissue",
	"subcellular_locations": "subcellular-location",
	"compounds":            "compound",
	"proteins":             "protein",
	"protein_complexes":    "protein-complex",
	"element_collections":  "element-collection",
	"nucleic_acids":        "nucleic-acid",

	"biological_states": "biological-state",

	"compound_locations":           "compound-location",
	"protein_locations":            "protein-location",
	"element_collection_locations": "element-collection-location",
	"nucleic_acid_locations":       "nucleic-acid-location",

	"reactions":                   "reaction",
	"transports":                  "transport",
	"interactions":                "interaction",
	"reaction_coupled_transports": "reaction-coupled-transport",

	"bounds":                "bound",
	"bound_visualizations":  "bound-visualization",
	"protein_complex_visualizations":            "protein-complex-visualization",
	"reaction_visualizations":                   "reaction-visualization",
	"reaction_coupled_transport_visualizations": "reaction-coupled-transport-visualization",
	"transport_visualizations":                  "transport-visualization",
	"interaction_visualizations":                "interaction-visualization",
	"sub_pathway_visualizations":                "sub-pathway-visualization",
	"edges":                                     "edge",

	"vacuous_compound_visualizations":           "vacuous-compound-visualization",
	"vacuous_protein_visualizations":            "vacuous-protein-visualization",
	"vacuous_nucleic_acid_visualizations":       "vacuous-nucleic-acid-visualization",
	"vacuous_element_collection_visualizations": "vacuous-element-collection-visualization",
}

// singularize maps a plural snake_case key to its singular kebab-case item
// tag. Unknown keys fall back to stripping a trailing "s".
func singularize(plural string) string {
	if s, ok := singularSpecials[plural]; ok {
		return s
	}
	if strings.HasSuffix(plural, "s") && len(plural) > 1 {
		return kebab(plural[:len(plural)-1])
	}
	return kebab(plural)
}

// needsIntegerTypeAttr reports whether a tag is an id-like field that
// PathBank exports annotate with type="integer".
func needsIntegerTypeAttr(tag string) bool {
	t := strings.ToLower(tag)
	return t == "id" || t == "named-for-id" || strings.HasSuffix(t, "-id")
}

// integerValue reports whether a decoded JSON value is an integral number.
func integerValue(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// scalarText formats a leaf value as element text.
func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	case float64:
		if n, ok := integerValue(t); ok {
			return strconv.FormatInt(n, 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type idFactory struct {
	next int64
}

func (f *idFactory) take() int64 {
	v := f.next
	f.next++
	return v
}

type attr struct {
	name, value string
}

// element is an ordered XML tree node.
type element struct {
	tag      string
	attrs    []attr
	text     string
	children []*element
}

func (e *element) child(tag string, attrs ...attr) *element {
	c := &element{tag: tag, attrs: attrs}
	e.children = append(e.children, c)
	return c
}

// render writes the element with two-space indentation. Elements with
// children put each child on its own line; leaves keep text inline.
func (e *element) render(buf *bytes.Buffer, depth int) error {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(e.tag)
	for _, a := range e.attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.name)
		buf.WriteString(`="`)
		if err := xml.EscapeText(buf, []byte(a.value)); err != nil {
			return err
		}
		buf.WriteByte('"')
	}

	if len(e.children) == 0 && e.text == "" {
		buf.WriteString("/>")
		return nil
	}
	buf.WriteByte('>')

	if len(e.children) == 0 {
		if err := xml.EscapeText(buf, []byte(e.text)); err != nil {
			return err
		}
		buf.WriteString("</")
		buf.WriteString(e.tag)
		buf.WriteByte('>')
		return nil
	}

	for _, c := range e.children {
		buf.WriteByte('\n')
		if err := c.render(buf, depth+1); err != nil {
			return err
		}
	}
	buf.WriteByte('\n')
	buf.WriteString(indent)
	buf.WriteString("</")
	buf.WriteString(e.tag)
	buf.WriteByte('>')
	return nil
}
