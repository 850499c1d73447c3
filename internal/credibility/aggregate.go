package credibility

import (
	"fmt"
	"strings"

	"NewsCredibility/internal/domain"
)

const (
	widelyCorroboratedAt = 70.0
	underReviewAt        = 45.0
)

// Components are the four inputs of the aggregator.
type Components struct {
	SourceTrust float64
	NLP         float64
	Community   float64
	CrossSource float64
}

// Combine returns the weighted overall score clamped to [0,100].
func (w Weights) Combine(c Components) float64 {
	overall := c.SourceTrust*w.SourceTrust +
		c.NLP*w.NLP +
		c.Community*w.Community +
		c.CrossSource*w.CrossSource
	return clamp(overall, 0, 100)
}

// StatusFor maps an overall score to its badge. First match wins.
func StatusFor(overall float64) domain.CredibilityStatus {
	switch {
	case overall >= widelyCorroboratedAt:
		return domain.StatusWidelyCorroborated
	case overall >= underReviewAt:
		return domain.StatusUnderReview
	default:
		return domain.StatusHighRisk
	}
}

// Override validates operator input and returns the pinned breakdown fields.
// It never consults the component scorers.
func Override(prev domain.ScoreBreakdown, newScore float64, justification string) (domain.ScoreBreakdown, error) {
	if newScore < 0 || newScore > 100 {
		return domain.ScoreBreakdown{}, fmt.Errorf("override %.2f: %w", newScore, domain.ErrInvalidScore)
	}
	if strings.TrimSpace(justification) == "" {
		return domain.ScoreBreakdown{}, domain.ErrEmptyJustification
	}

	next := prev
	next.Overall = newScore
	next.Status = StatusFor(newScore)
	return next, nil
}

// OverrideReason formats the audit reason of an admin override.
func OverrideReason(justification string) string {
	return "Admin override: " + justification
}

// AutoReason formats the audit reason of an automatic pass.
func AutoReason(status domain.CredibilityStatus) string {
	return "Auto-computed: " + string(status)
}
