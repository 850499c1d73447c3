package credibility

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Scorer lexicon. It overlaps the highlight lexicon in signals.go but is tuned
// separately; keep the two lists apart.
var (
	sensationalWords = []string{
		"shocking", "amazing", "unbelievable", "viral", "explosive",
		"exclusive", "breaking", "urgent", "scandal", "bizarre",
	}
	factualScorePatterns = compileAll(
		`\d+(\.\d+)?%`,
		`\b\d{4}-\d{2}-\d{2}\b`,
		`\b(19|20)\d{2}\b`,
		`according to`,
		`research shows`,
		`study found`,
		`\bstudy\b`,
		`data (indicates|shows)`,
		`officials? (said|stated|confirmed)`,
	)
)

const (
	heuristicBase     = 50.0
	sensationalDebit  = 3.0
	factualCredit     = 5.0
	longContentBonus  = 5.0
	shortContentDebit = 10.0

	classifierShare = 0.7
	heuristicShare  = 0.3
)

// HeuristicNLPScore scores wording alone, clamped to [0,100].
// Each lexicon entry counts once regardless of repetitions.
func (o Options) HeuristicNLPScore(content string) float64 {
	lower := strings.ToLower(content)
	score := heuristicBase

	for _, w := range sensationalWords {
		if strings.Contains(lower, w) {
			score -= sensationalDebit
		}
	}
	score += float64(countMatching(lower, factualScorePatterns)) * factualCredit

	switch n := utf8.RuneCountInString(content); {
	case n > o.LongContentChars:
		score += longContentBonus
	case n < o.ShortContentChars:
		score -= shortContentDebit
	}

	return clamp(score, 0, 100)
}

// NLPScore blends the classifier (70%) with heuristics (30%) when a classifier
// answers, otherwise returns the heuristic score.
func (e *Engine) NLPScore(ctx context.Context, content string) float64 {
	heuristic := e.opts.HeuristicNLPScore(content)

	model, ok := e.classifier.Score(ctx, content)
	if !ok {
		return heuristic
	}
	return classifierShare*model + heuristicShare*heuristic
}
