// Package budget estimates token counts for extract's --max-tokens limit,
// applied after --max-chars truncation.
package budget

import "math"

// EstimateTokensFromChars converts a character count into an estimated
// token count using a conservative ~4-chars-per-token heuristic, rounding
// up so truncation never overshoots the requested budget.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(len(s))
}
