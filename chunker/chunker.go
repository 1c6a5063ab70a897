// Package chunker splits pathway descriptions into overlapping word windows
// small enough for a single model call.
package chunker

import "strings"

// Config controls the chunking behaviour.
type Config struct {
	WordLimit int // Maximum words per chunk.
	Overlap   int // Words shared between consecutive chunks.
}

// Chunker splits free text into word-window chunks.
type Chunker struct {
	cfg Config
}

// New returns a Chunker with the given configuration.
// Zero-value fields are replaced with sensible defaults.
func New(cfg Config) *Chunker {
	if cfg.WordLimit <= 0 {
		cfg.WordLimit = 800
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.WordLimit {
		// Overlap must leave room for forward progress.
		cfg.Overlap = cfg.WordLimit - 1
	}
	return &Chunker{cfg: cfg}
}

// Chunk is a contiguous word window of the input text. StartWord and
// EndWord are a half-open index range into the whitespace-split word
// sequence of the original text.
type Chunk struct {
	ID        int    `json:"chunk_id"`
	StartWord int    `json:"start_word"`
	EndWord   int    `json:"end_word"`
	Text      string `json:"text"`
}

// Chunk splits text into overlapping windows of at most WordLimit words.
// Consecutive chunks share exactly Overlap words, except possibly the last
// pair when the text runs out. Every word of the input appears in at least
// one chunk; whitespace-only input yields no chunks.
func (c *Chunker) Chunk(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	limit := c.cfg.WordLimit
	step := limit - c.cfg.Overlap

	var chunks []Chunk
	for start := 0; ; start += step {
		end := start + limit
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			ID:        len(chunks),
			StartWord: start,
			EndWord:   end,
			Text:      strings.Join(words[start:end], " "),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
