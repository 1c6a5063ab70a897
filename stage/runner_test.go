package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pwmlx/pwmlx/llm"
)

// scriptedProvider returns canned replies in order and records the prompts
// it was called with.
type scriptedProvider struct {
	replies []string
	err     error // returned once all replies are consumed
	calls   []llm.ChatRequest
}

func (s *scriptedProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.calls = append(s.calls, req)
	if len(s.replies) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, errors.New("script exhausted")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return &llm.ChatResponse{Content: reply, FinishReason: "stop"}, nil
}

func userPrompt(t *testing.T, req llm.ChatRequest) string {
	t.Helper()
	if len(req.Messages) != 2 {
		t.Fatalf("expected system + user message, got %d messages", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleSystem {
		t.Fatalf("first message role = %q, want system", req.Messages[0].Role)
	}
	return req.Messages[1].Content
}

func TestRunFirstAttemptSucceeds(t *testing.T) {
	p := &scriptedProvider{replies: []string{`{"entities": {"compounds": []}}`}}
	r := NewRunner(p, Config{MaxAttempts: 2})

	rec, attempts, err := r.Run(context.Background(), "extraction", "sys", ExtractionPrompt("glucose enters"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	if len(attempts) != 1 {
		t.Fatalf("attempt log has %d entries, want 1", len(attempts))
	}
	if attempts[0].Attempt != 1 || attempts[0].Error != "" {
		t.Errorf("attempt log = %+v, want attempt 1 with no error", attempts[0])
	}
}

func TestRunRepairsAfterInvalidJSON(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		`this is not json at all`,
		`{"entities": {"compounds": [{"name": "glucose"}]}}`,
	}}
	r := NewRunner(p, Config{MaxAttempts: 2})

	rec, attempts, err := r.Run(context.Background(), "extraction", "sys", ExtractionPrompt("glucose enters"))
	if err != nil {
		t.Fatalf("Run should succeed on second attempt: %v", err)
	}
	if rec.Section("entities") == nil {
		t.Errorf("record missing entities: %v", rec)
	}

	if len(attempts) != 2 {
		t.Fatalf("attempt log has %d entries, want 2", len(attempts))
	}
	if attempts[0].Error == "" {
		t.Errorf("first attempt should record a parse error")
	}
	if attempts[0].Raw != "this is not json at all" {
		t.Errorf("first attempt raw = %q", attempts[0].Raw)
	}
	if attempts[1].Error != "" {
		t.Errorf("second attempt should have no error, got %q", attempts[1].Error)
	}

	// The repair prompt must carry the previous output and the parse error.
	second := userPrompt(t, p.calls[1])
	if !strings.Contains(second, "this is not json at all") {
		t.Errorf("repair prompt missing previous output:\n%s", second)
	}
	if !strings.Contains(second, "Parse error:") {
		t.Errorf("repair prompt missing parse error:\n%s", second)
	}

	// The first prompt must not contain repair scaffolding.
	first := userPrompt(t, p.calls[0])
	if strings.Contains(first, "Parse error:") {
		t.Errorf("initial prompt should not mention a parse error:\n%s", first)
	}
}

func TestRunExhaustsAttempts(t *testing.T) {
	p := &scriptedProvider{replies: []string{`nope`, `still nope`, `never json`}}
	r := NewRunner(p, Config{MaxAttempts: 3})

	rec, attempts, err := r.Run(context.Background(), "extraction", "sys", ExtractionPrompt("text"))
	if rec != nil {
		t.Errorf("expected nil record on failure")
	}
	if len(attempts) != 3 {
		t.Fatalf("attempt log has %d entries, want 3", len(attempts))
	}
	for i, a := range attempts {
		if a.Attempt != i+1 || a.Error == "" {
			t.Errorf("attempt %d = %+v, want numbered entry with error", i, a)
		}
	}

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error type = %T, want *Failure", err)
	}
	if failure.Stage != "extraction" {
		t.Errorf("failure stage = %q", failure.Stage)
	}
	if len(failure.Attempts) != 3 {
		t.Errorf("failure carries %d attempts, want 3", len(failure.Attempts))
	}
}

func TestRunTransportErrorNotRetried(t *testing.T) {
	p := &scriptedProvider{err: errors.New("connection refused")}
	r := NewRunner(p, Config{MaxAttempts: 3})

	_, attempts, err := r.Run(context.Background(), "extraction", "sys", ExtractionPrompt("text"))
	if err == nil {
		t.Fatal("expected error")
	}
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("error type = %T, want *Failure", err)
	}
	if !strings.Contains(failure.Message, "connection refused") {
		t.Errorf("failure message = %q", failure.Message)
	}
	if len(p.calls) != 1 {
		t.Errorf("provider called %d times, want 1 (transport errors are not retried)", len(p.calls))
	}
	if len(attempts) != 0 {
		t.Errorf("transport failure should not log an attempt, got %v", attempts)
	}
}

func TestRunDefaultsMaxAttempts(t *testing.T) {
	p := &scriptedProvider{replies: []string{`nope`, `nope again`, `{"x": 1}`}}
	r := NewRunner(p, Config{})

	_, _, err := r.Run(context.Background(), "extraction", "sys", ExtractionPrompt("text"))
	if err == nil {
		t.Fatal("expected failure: default budget is 2 attempts, valid JSON arrives on call 3")
	}
	if len(p.calls) != 2 {
		t.Errorf("provider called %d times, want %d", len(p.calls), DefaultMaxAttempts)
	}
}

func TestInferencePromptCarriesStageOne(t *testing.T) {
	p := &scriptedProvider{replies: []string{`{"additions": {}}`}}
	r := NewRunner(p, Config{})

	stageOne := `{"entities": {"compounds": [{"name": "glucose"}]}}`
	_, _, err := r.Run(context.Background(), "inference", "sys", InferencePrompt("glucose enters", stageOne))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	prompt := userPrompt(t, p.calls[0])
	if !strings.Contains(prompt, stageOne) {
		t.Errorf("inference prompt missing stage-one JSON:\n%s", prompt)
	}
	if !strings.Contains(prompt, "glucose enters") {
		t.Errorf("inference prompt missing original description:\n%s", prompt)
	}
}

func TestFailureErrorString(t *testing.T) {
	f := &Failure{Stage: "inference", Message: "no parseable JSON after 2 attempts"}
	want := "stage inference: no parseable JSON after 2 attempts"
	if f.Error() != want {
		t.Errorf("Error() = %q, want %q", f.Error(), want)
	}
}

func TestRunTemperatureAndTokensForwarded(t *testing.T) {
	p := &scriptedProvider{replies: []string{`{}`}}
	r := NewRunner(p, Config{Temperature: 0.4, MaxTokens: 1234})

	_, _, err := r.Run(context.Background(), "extraction", "sys", ExtractionPrompt("t"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	req := p.calls[0]
	if req.Temperature != 0.4 {
		t.Errorf("temperature = %v, want 0.4", req.Temperature)
	}
	if req.MaxTokens != 1234 {
		t.Errorf("max tokens = %d, want 1234", req.MaxTokens)
	}
}

func TestRunAttemptNumbersAreSequential(t *testing.T) {
	bad := make([]string, 5)
	for i := range bad {
		bad[i] = fmt.Sprintf("garbage %d", i)
	}
	p := &scriptedProvider{replies: bad}
	r := NewRunner(p, Config{MaxAttempts: 5})

	_, attempts, _ := r.Run(context.Background(), "extraction", "sys", ExtractionPrompt("t"))
	for i, a := range attempts {
		if a.Attempt != i+1 {
			t.Errorf("attempts[%d].Attempt = %d, want %d", i, a.Attempt, i+1)
		}
	}
}
