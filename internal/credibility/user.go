package credibility

import (
	"math"

	"NewsCredibility/internal/domain"
)

const (
	minUserSample          = 5
	accuracyTolerance      = 10.0
	neutralUserCredibility = 50.0
	userCredibilityFloor   = 40.0
	userCredibilitySpan    = 40.0
)

// RecomputeUserCredibility maps rating accuracy linearly onto [40,80]. A rating
// is accurate when it lies within 10 points of the article's current overall
// score. Below five ratings it returns 50 and false.
func RecomputeUserCredibility(history []domain.UserRatingRecord) (float64, bool) {
	if len(history) < minUserSample {
		return neutralUserCredibility, false
	}

	accurate := 0
	for _, r := range history {
		if math.Abs(r.Value-r.ArticleOverall) < accuracyTolerance {
			accurate++
		}
	}

	accuracyPct := float64(accurate) / float64(len(history)) * 100
	return userCredibilityFloor + accuracyPct/100*userCredibilitySpan, true
}

// CategoryCredibility applies the same formula per article category. Categories
// below the sample threshold are omitted.
func CategoryCredibility(history []domain.UserRatingRecord) map[string]float64 {
	grouped := make(map[string][]domain.UserRatingRecord)
	for _, r := range history {
		if r.Category == "" {
			continue
		}
		grouped[r.Category] = append(grouped[r.Category], r)
	}

	out := make(map[string]float64, len(grouped))
	for category, records := range grouped {
		if score, ok := RecomputeUserCredibility(records); ok {
			out[category] = score
		}
	}
	return out
}
