package pwmlx

// Config holds all configuration for the extraction pipeline.
type Config struct {
	// Chat is the LLM endpoint used for both extraction stages.
	Chat LLMConfig `json:"chat" yaml:"chat"`

	// MaxAttempts bounds parse-failure retries per stage (default 2).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" env:"PWMLX_MAX_ATTEMPTS"`

	// Temperature and MaxTokens are passed through to the chat provider.
	// MaxTokens <= 0 leaves the provider default in place.
	Temperature float64 `json:"temperature" yaml:"temperature" env:"PWMLX_TEMPERATURE"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" env:"PWMLX_MAX_TOKENS"`

	// Chunking
	ChunkWordLimit    int `json:"chunk_word_limit" yaml:"chunk_word_limit" env:"PWMLX_CHUNK_WORD_LIMIT"`
	ChunkOverlapWords int `json:"chunk_overlap_words" yaml:"chunk_overlap_words" env:"PWMLX_CHUNK_OVERLAP_WORDS"`

	// RepairJSON enables a jsonrepair pass before counting an LLM reply
	// as a parse failure.
	RepairJSON bool `json:"repair_json" yaml:"repair_json" env:"PWMLX_REPAIR_JSON"`

	// RunInference enables the second-stage inference pass by default.
	RunInference bool `json:"run_inference" yaml:"run_inference" env:"PWMLX_RUN_INFERENCE"`

	// System prompts for the two stages. Empty values fall back to the
	// built-in prompts.
	ExtractionSystemPrompt string `json:"extraction_system_prompt" yaml:"extraction_system_prompt"`
	InferenceSystemPrompt  string `json:"inference_system_prompt" yaml:"inference_system_prompt"`
}

// LLMConfig configures a single LLM provider endpoint.
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider" env:"PWMLX_LLM_PROVIDER"` // lmstudio, ollama, openai, openrouter, groq, xai, gemini, custom
	Model    string `json:"model" yaml:"model" env:"PWMLX_LLM_MODEL"`
	BaseURL  string `json:"base_url" yaml:"base_url" env:"PWMLX_LLM_BASE_URL"`
	APIKey   string `json:"api_key" yaml:"api_key" env:"PWMLX_LLM_API_KEY"`
}

// DefaultConfig returns a Config with sensible defaults for local inference.
func DefaultConfig() Config {
	return Config{
		Chat: LLMConfig{
			Provider: "lmstudio",
			Model:    "qwen2.5-14b-instruct",
			BaseURL:  "http://127.0.0.1:1234",
		},
		MaxAttempts:       2,
		Temperature:       0,
		MaxTokens:         2000,
		ChunkWordLimit:    800,
		ChunkOverlapWords: 120,
		RunInference:      true,
	}
}

// DefaultExtractionSystemPrompt instructs the model to emit
// PWML-structured JSON for the literal content of the text.
const DefaultExtractionSystemPrompt = `You are a biocuration assistant that converts natural-language pathway descriptions into PWML-structured JSON.

Return ONLY a single JSON object, no prose and no markdown fences.

The object has two top-level keys:
  "entities" with lists under "compounds", "proteins", "protein_complexes", "nucleic_acids", "element_collections", "species", "cell_types", "tissues", "subcellular_locations"; every item is an object with at least a "name".
  "processes" with lists under "reactions", "transports", "interactions", "reaction_coupled_transports". Reactions carry "name", "inputs", "outputs" (lists of compound names) and "enzymes" (objects with "protein_complex"). Transports carry "name", "cargo", "transporters" (objects with "protein_complex") and "elements_with_states" (objects with "element" and "state"). Interactions carry "name", "entity_1", "entity_2". Reaction-coupled transports reference a "reaction" and a "transport" by name.

Extract only what the text states. Include an "evidence" field with a verbatim quote for every process. Do not invent entities or steps.`

// DefaultInferenceSystemPrompt instructs the model to propose conservative
// additions on top of a first-stage extraction.
const DefaultInferenceSystemPrompt = `You are a biocuration assistant reviewing a PWML extraction against its source text.

Return ONLY a single JSON object, no prose and no markdown fences, with two top-level keys:
  "additions" mirroring the PWML layout ("entities" and "processes" groups) and containing only items missing from the extraction that the text clearly supports.
  "qa_hints" with a list of short strings flagging gaps you suspect but could not support from the text.

Be conservative. An empty "additions" object is the correct answer when the extraction is already complete. Never restate items already present.`
