package credibility

import (
	"time"

	"NewsCredibility/internal/domain"
)

// Detector flags coordinated voting on a single article. It holds no state
// between passes.
type Detector struct {
	params DetectorParams
}

// NewDetector builds a detector with the given thresholds.
func NewDetector(params DetectorParams) *Detector {
	return &Detector{params: params}
}

type detectorRule struct {
	reason domain.ReasonCode
	fires  func(p DetectorParams, ratings []domain.RatingSnapshot, now time.Time) bool
}

// Rules are evaluated in this order; the first that fires tags the verdict.
var detectorRules = []detectorRule{
	{domain.ReasonTemporalSpike, temporalSpike},
	{domain.ReasonNewAccounts, newAccountConcentration},
	{domain.ReasonLowVariance, lowVariance},
	{domain.ReasonExtremitySkew, extremitySkew},
	{domain.ReasonIPConcentration, ipConcentration},
}

// Evaluate returns suspicious when any rule fires. Fewer than MinRatings ratings
// are never suspicious.
func (d *Detector) Evaluate(ratings []domain.RatingSnapshot, now time.Time) domain.ManipulationVerdict {
	if len(ratings) < d.params.MinRatings {
		return domain.ManipulationVerdict{Reason: domain.ReasonInsufficientRatings}
	}

	verdict := domain.ManipulationVerdict{Reason: domain.ReasonNone}
	for _, rule := range detectorRules {
		if !rule.fires(d.params, ratings, now) {
			continue
		}
		if !verdict.Suspicious {
			verdict.Suspicious = true
			verdict.Reason = rule.reason
		}
		verdict.Triggered = append(verdict.Triggered, rule.reason)
	}
	return verdict
}

func temporalSpike(p DetectorParams, ratings []domain.RatingSnapshot, now time.Time) bool {
	recent := 0
	for _, r := range ratings {
		if now.Sub(r.CreatedAt) < p.SpikeWindow {
			recent++
		}
	}
	return recent >= p.SpikeMinCount && float64(recent) > float64(len(ratings))*p.SpikeFraction
}

func newAccountConcentration(p DetectorParams, ratings []domain.RatingSnapshot, now time.Time) bool {
	if len(ratings) < p.NewAccountMinRatings {
		return false
	}
	fresh := 0
	for _, r := range ratings {
		if now.Sub(r.UserCreatedAt) < p.NewAccountAge {
			fresh++
		}
	}
	return float64(fresh) > float64(len(ratings))*p.NewAccountFraction
}

func lowVariance(p DetectorParams, ratings []domain.RatingSnapshot, _ time.Time) bool {
	if len(ratings) < p.VarianceMinRatings {
		return false
	}
	return populationVariance(ratings) < p.VarianceThreshold
}

func extremitySkew(p DetectorParams, ratings []domain.RatingSnapshot, _ time.Time) bool {
	if len(ratings) < p.ExtremityMinRatings {
		return false
	}
	extreme := 0
	for _, r := range ratings {
		if r.Value > p.ExtremityHigh || r.Value < p.ExtremityLow {
			extreme++
		}
	}
	return float64(extreme)/float64(len(ratings)) > p.ExtremityFraction
}

func ipConcentration(p DetectorParams, ratings []domain.RatingSnapshot, _ time.Time) bool {
	counts := make(map[string]int)
	withIP := 0
	for _, r := range ratings {
		if r.IPAddress == "" {
			continue
		}
		counts[r.IPAddress]++
		withIP++
	}
	if withIP < p.IPMinRatings {
		return false
	}

	top := 0
	for _, c := range counts {
		if c > top {
			top = c
		}
	}
	return float64(top) > float64(len(ratings))*p.IPFraction && top > p.IPMinCount
}

func populationVariance(ratings []domain.RatingSnapshot) float64 {
	var sum float64
	for _, r := range ratings {
		sum += r.Value
	}
	mean := sum / float64(len(ratings))

	var sq float64
	for _, r := range ratings {
		d := r.Value - mean
		sq += d * d
	}
	return sq / float64(len(ratings))
}
