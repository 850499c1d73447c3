package credibility

import (
	"context"
	"log/slog"

	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

// ClassifierAdapter wraps an optional text classifier. Whether it is available is
// decided once at construction; a failing call falls back to heuristics silently.
type ClassifierAdapter struct {
	classifier ports.Classifier
	logger     *slog.Logger
}

// NewClassifierAdapter accepts a nil classifier for heuristic-only mode.
func NewClassifierAdapter(c ports.Classifier, logger *slog.Logger) *ClassifierAdapter {
	return &ClassifierAdapter{classifier: c, logger: logger}
}

// Available reports whether a classifier was configured.
func (a *ClassifierAdapter) Available() bool {
	return a != nil && a.classifier != nil
}

// Score maps the classifier answer onto the 0-100 credibility direction.
// The second return value is false when no usable answer was produced.
func (a *ClassifierAdapter) Score(ctx context.Context, text string) (float64, bool) {
	if !a.Available() {
		return 0, false
	}

	res, err := a.classifier.Classify(ctx, text)
	if err != nil {
		a.info("classifier unavailable, using heuristics", "error", err)
		return 0, false
	}

	return ClassificationScore(res)
}

// ClassificationScore converts (label, confidence) to 50±confidence*50.
func ClassificationScore(res domain.Classification) (float64, bool) {
	confidence := clamp(res.Confidence, 0, 1)
	switch res.Label {
	case domain.LabelCredible:
		return 50 + confidence*50, true
	case domain.LabelUnreliable:
		return 50 - confidence*50, true
	default:
		return 0, false
	}
}

func (a *ClassifierAdapter) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}
