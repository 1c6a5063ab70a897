// Command pwmlx extracts a PWML-structured record from a pathway
// description document and writes the record, its QA report, and
// optionally a .pwml XML export.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/pwmlx/pwmlx"
	"github.com/pwmlx/pwmlx/parser"
	"github.com/pwmlx/pwmlx/pwml"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	inPath := flag.String("in", "", "Input document (.txt, .md, .pdf, .xlsx)")
	outPath := flag.String("out", "extracted.json", "Output record path")
	reportPath := flag.String("report", "qa_report.json", "QA report path")
	pwmlPath := flag.String("pwml", "", "Optional .pwml XML output path")
	name := flag.String("name", "Generated Pathway", "Pathway name for the PWML header")
	desc := flag.String("desc", "", "Pathway description for the PWML header")
	pathwayID := flag.Int("id", 0, "named-for-id for the PWML header")
	noInference := flag.Bool("no-inference", false, "Skip the second-stage inference pass")
	provider := flag.String("provider", "", "LLM provider override (lmstudio, ollama, openai, openrouter, groq, xai, gemini, custom)")
	model := flag.String("model", "", "Model name override")
	baseURL := flag.String("base-url", "", "Provider base URL override")
	apiKey := flag.String("api-key", "", "Provider API key override")
	chunkWords := flag.Int("chunk-words", 0, "Words per chunk (0 = config default)")
	chunkOverlap := flag.Int("chunk-overlap", -1, "Overlap words between chunks (-1 = config default)")
	attempts := flag.Int("attempts", 0, "Max attempts per stage (0 = config default)")
	temperature := flag.Float64("temperature", -1, "Sampling temperature (-1 = config default)")
	maxTokens := flag.Int("max-tokens", 0, "Completion token cap (0 = config default)")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: pwmlx -in <document> [-out extracted.json] [-report qa_report.json] [-pwml out.pwml]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// .env is optional; environment wins over file config.
	_ = godotenv.Load()

	cfg := pwmlx.DefaultConfig()
	if *configPath != "" {
		if err := cleanenv.ReadConfig(*configPath, &cfg); err != nil {
			slog.Error("reading config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("reading config from environment", "error", err)
		os.Exit(1)
	}
	if *provider != "" {
		cfg.Chat.Provider = *provider
	}
	if *model != "" {
		cfg.Chat.Model = *model
	}
	if *baseURL != "" {
		cfg.Chat.BaseURL = *baseURL
	}
	if *apiKey != "" {
		cfg.Chat.APIKey = *apiKey
	}
	if *chunkWords > 0 {
		cfg.ChunkWordLimit = *chunkWords
	}
	if *chunkOverlap >= 0 {
		cfg.ChunkOverlapWords = *chunkOverlap
	}
	if *attempts > 0 {
		cfg.MaxAttempts = *attempts
	}
	if *temperature >= 0 {
		cfg.Temperature = *temperature
	}
	if *maxTokens > 0 {
		cfg.MaxTokens = *maxTokens
	}
	if cfg.Chat.APIKey == "" {
		switch cfg.Chat.Provider {
		case "openai":
			cfg.Chat.APIKey = os.Getenv("OPENAI_API_KEY")
		case "openrouter":
			cfg.Chat.APIKey = os.Getenv("OPENROUTER_API_KEY")
		case "groq":
			cfg.Chat.APIKey = os.Getenv("GROQ_API_KEY")
		}
	}
	if *noInference {
		cfg.RunInference = false
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	text, err := parser.NewRegistry().Load(ctx, *inPath)
	if err != nil {
		slog.Error("loading document", "path", *inPath, "error", err)
		os.Exit(1)
	}

	pipeline, err := pwmlx.New(cfg)
	if err != nil {
		slog.Error("creating pipeline", "error", err)
		os.Exit(1)
	}

	res, err := pipeline.Extract(ctx, text)
	if err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	if err := writeJSON(*outPath, res.Record); err != nil {
		slog.Error("writing record", "path", *outPath, "error", err)
		os.Exit(1)
	}
	if err := writeJSON(*reportPath, res.Report); err != nil {
		slog.Error("writing QA report", "path", *reportPath, "error", err)
		os.Exit(1)
	}

	if *pwmlPath != "" {
		xml, err := pwml.FromRecord(res.Record, pwml.Header{
			PathwayName: *name,
			Description: *desc,
			NamedForID:  *pathwayID,
		})
		if err != nil {
			slog.Error("rendering PWML", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*pwmlPath, xml, 0o644); err != nil {
			slog.Error("writing PWML", "path", *pwmlPath, "error", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote PWML to: %s\n", *pwmlPath)
	}

	fmt.Printf("Wrote record: %s\n", *outPath)
	fmt.Printf("Wrote QA report: %s\n", *reportPath)
	fmt.Printf("Components: %d | Main size: %d | Orphans: %d\n",
		res.Report.NComponents, res.Report.MainComponentSize, len(res.Report.OrphanComponents))
	for _, hint := range res.QAHints {
		fmt.Printf("hint: %s\n", hint)
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
