package stage

import "strings"

// ExtractionPrompt returns a PromptBuilder for the strict extraction stage
// over one chunk of pathway text. Repair attempts append the previous
// output and its parse error.
func ExtractionPrompt(inputText string) PromptBuilder {
	return func(prevRaw, parseErr string) string {
		lines := []string{
			"Extract PWML-structured JSON strictly according to the schema.",
			"Return ONLY the JSON object.",
			"Pathway description:",
			"<<<",
			strings.TrimSpace(inputText),
			">>>",
		}

		if prevRaw != "" && parseErr != "" {
			lines = append(lines,
				"",
				"Your previous attempt returned invalid JSON.",
				"Parse error: "+parseErr,
				"Here is the invalid output. Fix it while keeping evidence quotes verbatim and following all instructions.",
				"<<<",
				prevRaw,
				">>>",
			)
		}

		return strings.Join(lines, "\n")
	}
}

// InferencePrompt returns a PromptBuilder for the enrichment stage. It
// carries both the original description and the serialized stage-one
// record so the model proposes additions rather than a rewrite.
func InferencePrompt(inputText, stageOneJSON string) PromptBuilder {
	return func(prevRaw, parseErr string) string {
		lines := []string{
			"Use the original description and Stage-1 strict JSON to propose conservative PWML additions.",
			"Return ONLY the additions JSON per the inference schema.",
			"",
			"Original description:",
			"<<<",
			strings.TrimSpace(inputText),
			">>>",
			"",
			"Stage-1 JSON:",
			"<<<",
			stageOneJSON,
			">>>",
		}

		if prevRaw != "" && parseErr != "" {
			lines = append(lines,
				"",
				"Your previous inference output was invalid JSON.",
				"Parse error: "+parseErr,
				"Invalid output (revise into valid JSON without commentary):",
				"<<<",
				prevRaw,
				">>>",
			)
		}

		return strings.Join(lines, "\n")
	}
}
