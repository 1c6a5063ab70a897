// Package pwmlx turns natural-language biological pathway descriptions
// into PWML-structured records via a two-stage LLM pipeline with bounded
// self-repair, then audits the result with a connectivity QA report.
package pwmlx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pwmlx/pwmlx/chunker"
	"github.com/pwmlx/pwmlx/llm"
	"github.com/pwmlx/pwmlx/qa"
	"github.com/pwmlx/pwmlx/record"
	"github.com/pwmlx/pwmlx/stage"
)

// Stage names used in attempt logs and failures.
const (
	StageExtraction = "extraction"
	StageInference  = "inference"
)

// Result is the outcome of one pipeline run.
type Result struct {
	// Record is the final merged record, additions included.
	Record record.Record `json:"record"`

	// Additions is the raw second-stage output, nil when inference was
	// skipped.
	Additions record.Record `json:"additions,omitempty"`

	// QAHints are the free-text gap hints from the inference stage.
	QAHints []string `json:"qa_hints,omitempty"`

	// Attempts logs every LLM attempt, grouped by stage run.
	Attempts []StageAttempts `json:"attempts"`

	// Report is the connectivity QA report over the final record.
	Report *qa.Report `json:"report"`

	// Chunks are the word windows the description was split into.
	Chunks []chunker.Chunk `json:"chunks"`
}

// StageAttempts is the attempt log of a single stage run. ChunkID is -1
// for runs that cover the whole description.
type StageAttempts struct {
	Stage    string          `json:"stage"`
	ChunkID  int             `json:"chunk_id"`
	Attempts []stage.Attempt `json:"attempts"`
}

// Pipeline runs extraction, inference, merging, and QA.
type Pipeline struct {
	cfg    Config
	chat   llm.Provider
	chunks *chunker.Chunker
}

// Option configures pipeline construction.
type Option func(*Pipeline)

// WithChatProvider injects a pre-built chat provider, bypassing
// Config.Chat. Used by callers that manage provider lifetime themselves
// and by tests.
func WithChatProvider(p llm.Provider) Option {
	return func(pl *Pipeline) { pl.chat = p }
}

// New creates a pipeline from the given configuration.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.MaxAttempts < 0 {
		return nil, fmt.Errorf("%w: max_attempts must not be negative", ErrInvalidConfig)
	}

	p := &Pipeline{cfg: cfg}
	for _, o := range opts {
		o(p)
	}

	if p.chat == nil {
		chat, err := llm.NewProvider(llm.Config{
			Provider: cfg.Chat.Provider,
			Model:    cfg.Chat.Model,
			BaseURL:  cfg.Chat.BaseURL,
			APIKey:   cfg.Chat.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating chat provider: %w", err)
		}
		p.chat = chat
	}

	p.chunks = chunker.New(chunker.Config{
		WordLimit: cfg.ChunkWordLimit,
		Overlap:   cfg.ChunkOverlapWords,
	})
	return p, nil
}

// ExtractOption overrides pipeline defaults for a single run.
type ExtractOption func(*extractOptions)

type extractOptions struct {
	inference   bool
	maxAttempts int
	temperature float64
	maxTokens   int
}

// WithInference enables or disables the second-stage inference pass for
// this run.
func WithInference(on bool) ExtractOption {
	return func(o *extractOptions) { o.inference = on }
}

// WithMaxAttempts overrides the per-stage attempt bound for this run.
func WithMaxAttempts(n int) ExtractOption {
	return func(o *extractOptions) { o.maxAttempts = n }
}

// WithTemperature overrides the sampling temperature for this run.
func WithTemperature(t float64) ExtractOption {
	return func(o *extractOptions) { o.temperature = t }
}

// WithMaxTokens overrides the completion token limit for this run.
func WithMaxTokens(n int) ExtractOption {
	return func(o *extractOptions) { o.maxTokens = n }
}

// Extract runs the full pipeline over a pathway description. Stage
// failures are returned as *stage.Failure; a failed chunk aborts the run.
func (p *Pipeline) Extract(ctx context.Context, text string, opts ...ExtractOption) (*Result, error) {
	options := &extractOptions{
		inference:   p.cfg.RunInference,
		maxAttempts: p.cfg.MaxAttempts,
		temperature: p.cfg.Temperature,
		maxTokens:   p.cfg.MaxTokens,
	}
	for _, o := range opts {
		o(options)
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	runner := stage.NewRunner(p.chat, stage.Config{
		MaxAttempts: options.maxAttempts,
		Temperature: options.temperature,
		MaxTokens:   options.maxTokens,
		RepairJSON:  p.cfg.RepairJSON,
	})

	chunks := p.chunks.Chunk(text)
	slog.Info("starting extraction",
		"chunks", len(chunks),
		"words", chunker.WordCount(text),
		"est_tokens", chunker.EstimateTokens(text))

	extractSystem := p.cfg.ExtractionSystemPrompt
	if extractSystem == "" {
		extractSystem = DefaultExtractionSystemPrompt
	}

	var (
		partials []record.Record
		log      []StageAttempts
	)
	for _, ch := range chunks {
		stageName := fmt.Sprintf("%s chunk %d", StageExtraction, ch.ID)
		rec, attempts, err := runner.Run(ctx, stageName, extractSystem, stage.ExtractionPrompt(ch.Text))
		log = append(log, StageAttempts{Stage: StageExtraction, ChunkID: ch.ID, Attempts: attempts})
		if err != nil {
			return nil, err
		}
		partials = append(partials, rec)
		slog.Debug("chunk extracted", "chunk_id", ch.ID, "attempts", len(attempts))
	}

	merged := record.MergeChunks(partials)
	final := merged
	res := &Result{Record: merged, Chunks: chunks}

	if options.inference {
		stageOne, err := json.MarshalIndent(merged, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding stage-one record: %w", err)
		}

		inferSystem := p.cfg.InferenceSystemPrompt
		if inferSystem == "" {
			inferSystem = DefaultInferenceSystemPrompt
		}

		adds, attempts, err := runner.Run(ctx, StageInference, inferSystem, stage.InferencePrompt(text, string(stageOne)))
		log = append(log, StageAttempts{Stage: StageInference, ChunkID: -1, Attempts: attempts})
		if err != nil {
			return nil, err
		}

		final = record.MergeAdditions(merged, adds)
		res.Additions = adds
		res.QAHints = hintStrings(adds["qa_hints"])
		res.Record = final
		slog.Debug("inference merged", "qa_hints", len(res.QAHints))
	}

	res.Attempts = log

	g, meta := qa.BuildGraph(final)
	res.Report = qa.Analyze(g, qa.CollectEntities(final), meta)
	slog.Info("extraction complete",
		"nodes", res.Report.NNodes,
		"edges", res.Report.NEdges,
		"components", res.Report.NComponents)

	return res, nil
}

// hintStrings flattens a qa_hints value into trimmed strings.
func hintStrings(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, item := range list {
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
