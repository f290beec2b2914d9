package extract

import (
	"fmt"
	"regexp"

	"github.com/webtool-dev/webtool/internal/docmodel"
)

// injectionPatterns is the curated set of prompt-injection phrasings to
// scan extracted text for.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all )?previous instructions`),
	regexp.MustCompile(`(?i)system prompt\s*:`),
	regexp.MustCompile(`(?i)</?system>`),
	regexp.MustCompile(`(?i)reveal your`),
	regexp.MustCompile(`(?i)exfiltrate`),
}

// scanPromptInjection emits a non-fatal warning per match, redacting the
// matched phrase to its first 32 characters.
func scanPromptInjection(text string) []docmodel.Warning {
	var warnings []docmodel.Warning
	for _, re := range injectionPatterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		phrase := text[loc[0]:loc[1]]
		if len(phrase) > 32 {
			phrase = phrase[:32]
		}
		warnings = append(warnings, docmodel.Warning{
			Code:    "prompt_injection",
			Message: fmt.Sprintf("possible prompt injection matched: %q", phrase),
		})
	}
	return warnings
}
