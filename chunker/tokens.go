package chunker

import (
	"math"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// tokenEncoding is the BPE used for token estimates. o200k_base covers the
// current OpenAI model families and is a close enough proxy for local models.
const tokenEncoding = "o200k_base"

// EstimateTokens returns an estimated token count for text. It uses the
// o200k_base encoding when available and falls back to a words-based
// heuristic when the encoding cannot be loaded (e.g. no cached BPE data
// and no network access).
func EstimateTokens(text string) int {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return heuristicTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// heuristicTokens approximates token count as words * 1.3, which tracks
// English prose within ~10% for the common BPE vocabularies.
func heuristicTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) * 1.3))
}
