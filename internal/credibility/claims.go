package credibility

import (
	"fmt"
	"regexp"
	"strings"

	"NewsCredibility/internal/domain"
)

const (
	maxQuoteRunes  = 450
	minQuoteWords  = 6
	quotePrefix    = "Quote: "
	statisticShape = "Statistic: %s found in text"
)

var (
	quoteExpr     = regexp.MustCompile(`"([^"]*)"`)
	statisticExpr = regexp.MustCompile(`\d+(?:%| percent| million| billion)`)
)

// ExtractClaims returns quote claims (more than five words) followed by
// statistic claims, all uncorroborated.
func ExtractClaims(text string) []domain.Claim {
	var claims []domain.Claim

	for _, m := range quoteExpr.FindAllStringSubmatch(text, -1) {
		quote := m[1]
		if len(strings.Fields(quote)) < minQuoteWords {
			continue
		}
		claims = append(claims, domain.Claim{
			Kind: domain.ClaimQuote,
			Text: quotePrefix + truncateRunes(quote, maxQuoteRunes),
		})
	}

	for _, stat := range statisticExpr.FindAllString(text, -1) {
		claims = append(claims, domain.Claim{
			Kind: domain.ClaimStatistic,
			Text: fmt.Sprintf(statisticShape, stat),
		})
	}

	return claims
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
