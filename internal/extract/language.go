package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// foldCase does unicode-aware case folding (rather than ASCII-only
// strings.ToLower) so the stopword-overlap heuristic still works on
// non-Latin-1 scripts that have case (e.g. Cyrillic, Greek).
var foldCase = cases.Lower(language.Und)

// commonWordsByLang is a tiny stopword-overlap heuristic used only when no
// document attribute declares a language. It is intentionally coarse: this is a
// fallback, not a full language identifier.
var commonWordsByLang = map[string][]string{
	"en": {"the", "and", "of", "to", "in", "is", "that", "for"},
	"es": {"el", "la", "de", "que", "y", "en", "los", "para"},
	"fr": {"le", "la", "de", "et", "les", "des", "est", "pour"},
	"de": {"der", "die", "und", "das", "ist", "von", "mit", "für"},
}

func heuristicLanguage(text string) string {
	sample := text
	if len(sample) > 2048 {
		sample = sample[:2048]
	}
	words := strings.Fields(foldCase.String(sample))
	if len(words) == 0 {
		return ""
	}
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	bestLang := ""
	bestScore := 0
	for lang, common := range commonWordsByLang {
		score := 0
		for _, w := range common {
			score += counts[w]
		}
		if score > bestScore {
			bestScore = score
			bestLang = lang
		}
	}
	if bestScore < 3 {
		return ""
	}
	return bestLang
}
