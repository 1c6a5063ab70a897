package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// ollamaProvider implements Provider using Ollama's native API client.
// The native /api/chat endpoint reports prompt/eval token counts that the
// OpenAI-compatible shim omits for some model families.
type ollamaProvider struct {
	cfg    Config
	client *api.Client
}

// NewOllama creates a provider for Ollama.
func NewOllama(cfg Config) (Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama base url: %w", err)
	}

	return &ollamaProvider{
		cfg:    cfg,
		client: api.NewClient(u, http.DefaultClient),
	}, nil
}

func (p *ollamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}

	msgs := make([]api.Message, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = api.Message{Role: m.Role, Content: m.Content}
	}

	opts := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   &stream,
		Options:  opts,
	}
	if req.ResponseFormat == "json_object" {
		chatReq.Format = []byte(`"json"`)
	}

	var final api.ChatResponse
	err := p.client.Chat(ctx, chatReq, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.DoneReason = cr.DoneReason
			final.Model = cr.Model
			final.Metrics = cr.Metrics
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	return &ChatResponse{
		Content:          final.Message.Content,
		Model:            final.Model,
		FinishReason:     final.DoneReason,
		PromptTokens:     final.Metrics.PromptEvalCount,
		CompletionTokens: final.Metrics.EvalCount,
		TotalTokens:      final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
	}, nil
}
