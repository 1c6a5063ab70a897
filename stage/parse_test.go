package stage

import (
	"strings"
	"testing"
)

func TestDecodePlainObject(t *testing.T) {
	rec, err := Decode(`{"pathway_name": "glycolysis"}`, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec["pathway_name"] != "glycolysis" {
		t.Errorf("record = %v", rec)
	}
}

func TestDecodeStripsCodeFence(t *testing.T) {
	tests := []string{
		"```json\n{\"a\": 1}\n```",
		"```\n{\"a\": 1}\n```",
		"Here is the result:\n```json\n{\"a\": 1}\n```\nLet me know if you need more.",
	}
	for _, raw := range tests {
		rec, err := Decode(raw, false)
		if err != nil {
			t.Errorf("Decode(%q): %v", raw, err)
			continue
		}
		if rec["a"] != float64(1) {
			t.Errorf("Decode(%q) = %v", raw, rec)
		}
	}
}

func TestDecodeExtractsEmbeddedObject(t *testing.T) {
	raw := `Sure! The extracted pathway is {"entities": {"compounds": []}} as requested.`
	rec, err := Decode(raw, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if rec.Section("entities") == nil {
		t.Errorf("record = %v", rec)
	}
}

func TestDecodeRejectsNonJSON(t *testing.T) {
	tests := []string{
		"",
		"I could not process this text.",
		"[1, 2, 3]",
		`{"unterminated": `,
	}
	for _, raw := range tests {
		if _, err := Decode(raw, false); err == nil {
			t.Errorf("Decode(%q) should fail", raw)
		}
	}
}

func TestDecodeRepairDisabledByDefault(t *testing.T) {
	// Unquoted keys are invalid JSON and must count as a parse failure
	// when repair mode is off.
	raw := `{name: "glucose"}`
	if _, err := Decode(raw, false); err == nil {
		t.Fatal("Decode without repair should reject unquoted keys")
	}
}

func TestDecodeRepairFixesSloppyJSON(t *testing.T) {
	tests := []string{
		`{name: "glucose"}`,
		`{"items": [1, 2, 3,]}`,
		`{'name': 'glucose'}`,
	}
	for _, raw := range tests {
		rec, err := Decode(raw, true)
		if err != nil {
			t.Errorf("Decode(%q) with repair: %v", raw, err)
			continue
		}
		if len(rec) == 0 {
			t.Errorf("Decode(%q) with repair produced empty record", raw)
		}
	}
}

func TestDecodeRepairStillRejectsGarbage(t *testing.T) {
	if _, err := Decode("total nonsense without braces", true); err == nil {
		t.Fatal("repair mode must not accept non-JSON text")
	}
}

func TestDecodeErrorMentionsJSON(t *testing.T) {
	_, err := Decode(`{"bad": }`, false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "JSON") {
		t.Errorf("error should mention JSON: %v", err)
	}
}
