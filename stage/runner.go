// Package stage runs a single model stage with bounded self-repair: the
// model is prompted, its output parsed as JSON, and on parse failure it is
// re-prompted with its previous output and the parse error until the
// attempt budget runs out.
package stage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pwmlx/pwmlx/llm"
	"github.com/pwmlx/pwmlx/record"
)

// DefaultMaxAttempts is the attempt budget used when Config.MaxAttempts
// is zero: one initial call plus one repair round.
const DefaultMaxAttempts = 2

// Config controls stage execution.
type Config struct {
	MaxAttempts int     // Total attempts per stage, including the first.
	Temperature float64 // Sampling temperature for all attempts.
	MaxTokens   int     // Completion token cap, 0 for provider default.
	RepairJSON  bool    // Run jsonrepair on outputs that fail strict parsing.
}

// Attempt records one model call within a stage.
type Attempt struct {
	Attempt int    `json:"attempt"`
	Raw     string `json:"raw"`
	Error   string `json:"error,omitempty"`
}

// Failure is the only error a stage run produces. It carries the full
// attempt log so callers can report exactly what the model returned.
type Failure struct {
	Stage    string    `json:"stage"`
	Message  string    `json:"message"`
	Attempts []Attempt `json:"attempts"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("stage %s: %s", f.Stage, f.Message)
}

// PromptBuilder builds the user prompt for an attempt. On the first attempt
// prevRaw and parseErr are empty; on repair attempts they carry the previous
// raw output and the error it failed with.
type PromptBuilder func(prevRaw, parseErr string) string

// Runner executes stages against a chat provider.
type Runner struct {
	chat llm.Provider
	cfg  Config
}

// NewRunner returns a Runner. Zero-value config fields get defaults.
func NewRunner(chat llm.Provider, cfg Config) *Runner {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Runner{chat: chat, cfg: cfg}
}

// Run executes one stage to completion. It returns the decoded record and
// the attempt log. Parse failures consume attempts and trigger a repair
// prompt; transport failures abort immediately. Either way the only error
// type returned is *Failure.
func (r *Runner) Run(ctx context.Context, stage, system string, build PromptBuilder) (record.Record, []Attempt, error) {
	var attempts []Attempt
	var prevRaw, lastErr string

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		prompt := build(prevRaw, lastErr)

		resp, err := r.chat.Chat(ctx, llm.ChatRequest{
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: system},
				{Role: llm.RoleUser, Content: prompt},
			},
			Temperature: r.cfg.Temperature,
			MaxTokens:   r.cfg.MaxTokens,
		})
		if err != nil {
			slog.Error("stage: model call failed",
				"stage", stage, "attempt", attempt, "error", err)
			return nil, attempts, &Failure{
				Stage:    stage,
				Message:  fmt.Sprintf("model call failed on attempt %d: %v", attempt, err),
				Attempts: attempts,
			}
		}

		raw := resp.Content
		rec, perr := Decode(raw, r.cfg.RepairJSON)
		if perr != nil {
			attempts = append(attempts, Attempt{Attempt: attempt, Raw: raw, Error: perr.Error()})
			prevRaw, lastErr = raw, perr.Error()
			slog.Warn("stage: output failed to parse",
				"stage", stage, "attempt", attempt,
				"max_attempts", r.cfg.MaxAttempts, "error", perr)
			continue
		}

		attempts = append(attempts, Attempt{Attempt: attempt, Raw: raw})
		slog.Debug("stage: parsed output",
			"stage", stage, "attempt", attempt, "tokens", resp.TotalTokens)
		return rec, attempts, nil
	}

	return nil, attempts, &Failure{
		Stage:    stage,
		Message:  fmt.Sprintf("no parseable JSON after %d attempts", r.cfg.MaxAttempts),
		Attempts: attempts,
	}
}
