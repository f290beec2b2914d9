package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/webtool-dev/webtool/internal/docmodel"
	"github.com/webtool-dev/webtool/internal/budget"
)

// applyTruncation applies --max-chars then --max-tokens in order, emitting a `truncated: chars=X of Y`
// warning for whichever bound actually fires.
func applyTruncation(markdown string, limits Limits, warnings []docmodel.Warning) (string, []docmodel.Warning) {
	original := len(markdown)

	if limits.MaxChars > 0 && len(markdown) > limits.MaxChars {
		markdown = truncateAtRuneBoundary(markdown, limits.MaxChars)
		warnings = append(warnings, docmodel.Warning{
			Code:    "truncated",
			Message: fmt.Sprintf("truncated: chars=%d of %d", limits.MaxChars, original),
		})
	}

	if limits.MaxTokens > 0 {
		estimated := budget.EstimateTokens(markdown)
		if estimated > limits.MaxTokens {
			targetChars := limits.MaxTokens * 4
			markdown = truncateParagraphWise(markdown, targetChars)
			warnings = append(warnings, docmodel.Warning{
				Code:    "truncated",
				Message: fmt.Sprintf("truncated: chars=%d of %d", len(markdown), original),
			})
		}
	}

	return markdown, warnings
}

// truncateAtRuneBoundary cuts s at n bytes, backing off to the nearest
// preceding rune boundary.
func truncateAtRuneBoundary(s string, n int) string {
	if n >= len(s) {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// truncateParagraphWise (readability output) / section-wise (docs output,
// handled by the caller operating over already-joined markdown) drops
// trailing paragraphs until the result fits within targetChars.
func truncateParagraphWise(markdown string, targetChars int) string {
	if len(markdown) <= targetChars {
		return markdown
	}
	paras := strings.Split(markdown, "\n\n")
	var kept []string
	total := 0
	for _, p := range paras {
		if total+len(p)+2 > targetChars && len(kept) > 0 {
			break
		}
		kept = append(kept, p)
		total += len(p) + 2
	}
	return strings.Join(kept, "\n\n")
}
