package stage

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/pwmlx/pwmlx/record"
)

var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Decode parses a raw model reply into a record. Markdown code fences and
// surrounding prose are stripped before parsing. When repair is true,
// output that fails strict parsing gets one jsonrepair pass (unquoted keys,
// trailing commas, single quotes) before being rejected.
func Decode(raw string, repair bool) (record.Record, error) {
	candidate, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var rec record.Record
	jerr := json.Unmarshal([]byte(candidate), &rec)
	if jerr == nil {
		return rec, nil
	}

	if repair {
		if fixed, rerr := jsonrepair.JSONRepair(candidate); rerr == nil {
			var repaired record.Record
			if json.Unmarshal([]byte(fixed), &repaired) == nil {
				return repaired, nil
			}
		}
	}

	return nil, fmt.Errorf("invalid JSON: %v", jerr)
}

func extractJSON(raw string) (string, error) {
	// Strip markdown code blocks first.
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) > 1 {
		raw = m[1]
	}

	raw = strings.TrimSpace(raw)

	// If it already starts with '{', try as-is.
	if strings.HasPrefix(raw, "{") {
		return raw, nil
	}

	// Find the first '{' and last '}' to extract the JSON object.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], nil
	}

	return "", fmt.Errorf("no JSON object found in response")
}
