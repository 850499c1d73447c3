package credibility

import "time"

// Weights are the aggregator factors. They are expected to sum to 1.
type Weights struct {
	SourceTrust float64
	NLP         float64
	Community   float64
	CrossSource float64
}

// DefaultWeights returns 0.30/0.25/0.30/0.15.
func DefaultWeights() Weights {
	return Weights{SourceTrust: 0.30, NLP: 0.25, Community: 0.30, CrossSource: 0.15}
}

// Options tunes the component scorers.
type Options struct {
	Weights Weights

	// DefaultSourceTrust is used when an article has no source on file.
	DefaultSourceTrust float64

	// NLP length heuristics, in characters of content.
	LongContentChars  int
	ShortContentChars int

	// Rater impact multipliers keyed on the rater's credibility score.
	HighCredibilityAbove float64
	LowCredibilityBelow  float64
	HighImpact           float64
	LowImpact            float64

	// FreezeCommunityWhenLocked carries the previous community score over while
	// the article is soft-locked.
	FreezeCommunityWhenLocked bool

	Detector DetectorParams
}

// DefaultOptions mirrors the production calibration.
func DefaultOptions() Options {
	return Options{
		Weights:                   DefaultWeights(),
		DefaultSourceTrust:        50,
		LongContentChars:          500,
		ShortContentChars:         100,
		HighCredibilityAbove:      75,
		LowCredibilityBelow:       40,
		HighImpact:                2.0,
		LowImpact:                 0.5,
		FreezeCommunityWhenLocked: true,
		Detector:                  DefaultDetectorParams(),
	}
}

// DetectorParams holds every manipulation threshold. All of them are heuristic.
type DetectorParams struct {
	MinRatings int

	SpikeWindow   time.Duration
	SpikeMinCount int
	SpikeFraction float64

	NewAccountAge        time.Duration
	NewAccountFraction   float64
	NewAccountMinRatings int

	VarianceMinRatings int
	VarianceThreshold  float64

	ExtremityMinRatings int
	ExtremityHigh       float64
	ExtremityLow        float64
	ExtremityFraction   float64

	IPMinRatings int
	IPFraction   float64
	IPMinCount   int
}

// DefaultDetectorParams returns the thresholds the detector shipped with.
func DefaultDetectorParams() DetectorParams {
	return DetectorParams{
		MinRatings:           3,
		SpikeWindow:          time.Hour,
		SpikeMinCount:        5,
		SpikeFraction:        0.7,
		NewAccountAge:        24 * time.Hour,
		NewAccountFraction:   0.5,
		NewAccountMinRatings: 5,
		VarianceMinRatings:   5,
		VarianceThreshold:    50,
		ExtremityMinRatings:  10,
		ExtremityHigh:        75,
		ExtremityLow:         25,
		ExtremityFraction:    0.8,
		IPMinRatings:         5,
		IPFraction:           0.4,
		IPMinCount:           2,
	}
}
