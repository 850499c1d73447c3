package credibility

import (
	"math"

	"NewsCredibility/internal/domain"
)

const (
	neutralCommunityScore = 50.0
	noClaimsCrossSource   = 40.0
)

// SourceTrust is min(100, base + publicationBoost + corroborationBoost).
// A nil source scores defaultBase.
func SourceTrust(src *domain.SourceProfile, defaultBase float64) float64 {
	if src == nil {
		return defaultBase
	}

	pubBoost := math.Min(float64(src.ArticlesPublished)/100*5, 5)
	corrBoost := src.CorroborationRate * 10
	return math.Min(100, src.CredibilityScore+pubBoost+corrBoost)
}

// CommunityScore is the credibility-weighted mean of ratings, 50 when empty.
func (o Options) CommunityScore(ratings []domain.RatingSnapshot) float64 {
	var weightedSum, totalWeight float64
	for _, r := range ratings {
		w := r.Weight * o.userImpact(r.UserCredibilityScore)
		weightedSum += r.Value * w
		totalWeight += w
	}

	if totalWeight == 0 {
		return neutralCommunityScore
	}
	return weightedSum / totalWeight
}

func (o Options) userImpact(credibility float64) float64 {
	switch {
	case credibility > o.HighCredibilityAbove:
		return o.HighImpact
	case credibility < o.LowCredibilityBelow:
		return o.LowImpact
	default:
		return 1.0
	}
}

// CrossSourceScore averages per-claim corroboration tiers, 40 without claims.
// Uncorroborated claims add nothing but still count in the denominator.
func CrossSourceScore(claims []domain.Claim) float64 {
	if len(claims) == 0 {
		return noClaimsCrossSource
	}

	var total float64
	for _, c := range claims {
		total += corroborationTier(c.CorroborationCount)
	}
	return total / float64(len(claims))
}

func corroborationTier(count int) float64 {
	switch {
	case count >= 4:
		return 90
	case count >= 2:
		return 50
	case count >= 1:
		return 20
	default:
		return 0
	}
}

// Distribution buckets ratings into very_low/low/neutral/high bands.
func Distribution(ratings []domain.RatingSnapshot) domain.RatingDistribution {
	dist := domain.RatingDistribution{Total: len(ratings)}
	if len(ratings) == 0 {
		return dist
	}

	var sum float64
	for _, r := range ratings {
		sum += r.Value
		switch {
		case r.Value < 25:
			dist.VeryLow++
		case r.Value < 50:
			dist.Low++
		case r.Value < 75:
			dist.Neutral++
		default:
			dist.High++
		}
	}
	dist.Average = math.Round(sum/float64(len(ratings))*100) / 100
	return dist
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
