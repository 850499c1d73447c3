package credibility

import (
	"regexp"
	"strings"
	"unicode"
)

// Signals are the sentences highlighted to readers, in document order.
type Signals struct {
	Hype    []string
	Factual []string
}

// Highlight lexicon. It is intentionally separate from the NLP scorer lexicon in nlp.go.
var (
	hypeKeywords = []string{
		"shocking", "bombshell", "destroyed", "eviscerated", "you won't believe",
		"miracle", "secret", "exposed", "shameful", "betrayal", "crisis",
		"catastrophe", "urgent", "breaking", "nightmare",
	}
	factualKeywords = []string{
		"according to", "reported by", "study shows", "data indicates",
		"percent", "%", "evidence", "confirmed", "official", "stated",
		"researchers", "statistics",
	}
)

// Fact-opinion lexicon, matched against the lower-cased full text.
var (
	factPatterns = compileAll(
		`\d+%`, `\d{4}`, `\$`, `according to`, `report`, `study`,
		`evidence`, `data`, `statistics`, `record`, `official`,
	)
	opinionPatterns = compileAll(
		`i think`, `believe`, `feel`, `opinion`, `should`,
		`must`, `best`, `worst`, `amazing`, `terrible`, `wrong`,
	)
)

// ExtractSignals classifies each sentence as hype or factual. Hype wins when both apply.
func ExtractSignals(text string) Signals {
	var out Signals
	for _, sentence := range SplitSentences(text) {
		lower := strings.ToLower(sentence)
		switch {
		case containsAny(lower, hypeKeywords) || strings.Contains(sentence, "!!!"):
			out.Hype = append(out.Hype, sentence)
		case containsAny(lower, factualKeywords) || strings.IndexFunc(sentence, unicode.IsDigit) >= 0:
			out.Factual = append(out.Factual, sentence)
		}
	}
	return out
}

// FactOpinionRatio returns factHits/(factHits+opinionHits), or 0.5 when nothing matches.
// Each pattern counts at most once.
func FactOpinionRatio(text string) float64 {
	lower := strings.ToLower(text)
	facts := countMatching(lower, factPatterns)
	opinions := countMatching(lower, opinionPatterns)

	total := facts + opinions
	if total == 0 {
		return 0.5
	}
	return float64(facts) / float64(total)
}

// SplitSentences breaks text after '.' or '?' followed by one whitespace rune.
// A boundary is skipped after initials such as "e.g." and after short
// capitalised abbreviations such as "Mr." or "Dr.".
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var (
		sentences []string
		start     int
	)
	for i := 0; i < len(runes)-1; i++ {
		if (runes[i] != '.' && runes[i] != '?') || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if isInitialism(runes, i) || isAbbreviation(runes, i) {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		start = i + 2
		i++
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

// isInitialism reports a "w.w." shape ending at end.
func isInitialism(runes []rune, end int) bool {
	if end < 3 {
		return false
	}
	return isWordRune(runes[end-3]) && runes[end-2] == '.' && isWordRune(runes[end-1])
}

// isAbbreviation reports an "Xy." shape ending at end.
func isAbbreviation(runes []rune, end int) bool {
	if end < 2 || runes[end] != '.' {
		return false
	}
	return unicode.IsUpper(runes[end-2]) && unicode.IsLower(runes[end-1])
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func countMatching(s string, patterns []*regexp.Regexp) int {
	hits := 0
	for _, p := range patterns {
		if p.MatchString(s) {
			hits++
		}
	}
	return hits
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}
