package extract

import "math"

// tokensPerWord is the heuristic ratio between LLM tokens and English words.
// It is deliberately not an exact tokenizer: the batch pipeline only needs a
// stable, cheap estimate for reporting.
const tokensPerWord = 1.3

// EstimateTokens estimates the token count for a document from its word
// count, rounding up.
func EstimateTokens(wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(wordCount) * tokensPerWord))
}
