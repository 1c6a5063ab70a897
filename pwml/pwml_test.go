package pwml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pwmlx/pwmlx/record"
)

func TestFromRecordHeader(t *testing.T) {
	out, err := FromRecord(record.Record{}, Header{
		PathwayName: "Glycolysis",
		Description: "Sugar breakdown",
		NamedForID:  42,
	})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		"<super-pathway-visualization>",
		`<named-for-id type="integer">42</named-for-id>`,
		"<named-for-type>Pathway</named-for-type>",
		"<cached-name>Glycolysis</cached-name>",
		"<cached-description>Sugar breakdown</cached-description>",
		"</super-pathway-visualization>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestFromRecordDefaultName(t *testing.T) {
	out, err := FromRecord(record.Record{}, Header{})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if !strings.Contains(string(out), "<cached-name>Generated Pathway</cached-name>") {
		t.Errorf("default pathway name missing:\n%s", out)
	}
}

func TestFromRecordEntities(t *testing.T) {
	rec := record.Record{
		"entities": map[string]any{
			"compounds": []any{
				map[string]any{"name": "glucose"},
			},
			"nucleic_acids": []any{
				map[string]any{"name": "tRNA-Leu"},
			},
		},
	}
	out, err := FromRecord(rec, Header{})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		"<compounds>",
		"<compound>",
		"<name>glucose</name>",
		"<nucleic-acids>",
		"<nucleic-acid>",
		"<name>tRNA-Leu</name>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestFromRecordGeneratedIDs(t *testing.T) {
	rec := record.Record{
		"entities": map[string]any{
			"compounds": []any{
				map[string]any{"name": "a"},
				map[string]any{"name": "b"},
				map[string]any{"name": "c", "id": float64(99)},
			},
		},
	}
	out, err := FromRecord(rec, Header{})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, `<id type="integer">1</id>`) {
		t.Errorf("first generated id missing:\n%s", s)
	}
	if !strings.Contains(s, `<id type="integer">2</id>`) {
		t.Errorf("second generated id missing:\n%s", s)
	}
	// The explicit id comes from appendMap, which also tags id-like fields.
	if !strings.Contains(s, `<id type="integer">99</id>`) {
		t.Errorf("explicit id missing:\n%s", s)
	}
	if strings.Contains(s, `>3</id>`) {
		t.Errorf("id 3 should not be generated for an item that has one:\n%s", s)
	}
}

func TestFromRecordProcesses(t *testing.T) {
	rec := record.Record{
		"processes": map[string]any{
			"reactions": []any{
				map[string]any{
					"name":   "phosphorylation",
					"inputs": []any{"glucose", "ATP"},
				},
			},
		},
	}
	out, err := FromRecord(rec, Header{})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	s := string(out)

	for _, want := range []string{
		"<processes>",
		"<reactions>",
		"<reaction>",
		"<inputs>",
		"<input>glucose</input>",
		"<input>ATP</input>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestFromRecordEscapesText(t *testing.T) {
	rec := record.Record{
		"entities": map[string]any{
			"compounds": []any{
				map[string]any{"name": `5'-AMP <free> & "bound"`},
			},
		},
	}
	out, err := FromRecord(rec, Header{})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, "&lt;free&gt; &amp;") {
		t.Errorf("special characters not escaped:\n%s", s)
	}
	if strings.Contains(s, "<free>") {
		t.Errorf("raw angle brackets leaked into output:\n%s", s)
	}
}

func TestFromRecordDeterministic(t *testing.T) {
	rec := record.Record{
		"entities": map[string]any{
			"proteins":  []any{map[string]any{"name": "p1"}, map[string]any{"name": "p2"}},
			"compounds": []any{map[string]any{"name": "c1"}},
		},
		"processes": map[string]any{
			"interactions": []any{map[string]any{"entity_1": "a", "entity_2": "b"}},
		},
	}
	first, err := FromRecord(rec, Header{PathwayName: "x"})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := FromRecord(rec, Header{PathwayName: "x"})
		if err != nil {
			t.Fatalf("FromRecord: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("output differs between runs:\n%s\nvs\n%s", first, again)
		}
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		plural, want string
	}{
		{"species", "species"},
		{"cell_types", "cell-type"},
		{"protein_complexes", "protein-complex"},
		{"nucleic_acids", "nucleic-acid"},
		{"reaction_coupled_transports", "reaction-coupled-transport"},
		{"edges", "edge"},
		{"inputs", "input"},
		{"widgets", "widget"},
		{"s", "s"},
	}
	for _, tt := range tests {
		if got := singularize(tt.plural); got != tt.want {
			t.Errorf("singularize(%q) = %q, want %q", tt.plural, got, tt.want)
		}
	}
}

func TestNeedsIntegerTypeAttr(t *testing.T) {
	for tag, want := range map[string]bool{
		"id":           true,
		"compound-id":  true,
		"named-for-id": true,
		"name":         false,
		"acid":         false,
	} {
		if got := needsIntegerTypeAttr(tag); got != want {
			t.Errorf("needsIntegerTypeAttr(%q) = %v, want %v", tag, got, want)
		}
	}
}

func TestScalarText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{true, "true"},
		{false, "false"},
		{"abc", "abc"},
		{float64(3), "3"},
		{float64(3.5), "3.5"},
	}
	for _, tt := range tests {
		if got := scalarText(tt.in); got != tt.want {
			t.Errorf("scalarText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
