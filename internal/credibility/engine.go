package credibility

import (
	"context"
	"log/slog"
	"time"

	"NewsCredibility/internal/domain"
)

// Engine computes credibility breakdowns. It performs no I/O other than the
// optional classifier call and is safe for concurrent use across articles.
type Engine struct {
	opts       Options
	classifier *ClassifierAdapter
	detector   *Detector
	now        func() time.Time
	logger     *slog.Logger
}

// EngineDeps wires the engine collaborators.
type EngineDeps struct {
	Options    Options
	Classifier *ClassifierAdapter
	Clock      func() time.Time
	Logger     *slog.Logger
}

// NewEngine constructs the engine; a nil classifier means heuristic-only scoring.
func NewEngine(deps EngineDeps) *Engine {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	classifier := deps.Classifier
	if classifier == nil {
		classifier = NewClassifierAdapter(nil, deps.Logger)
	}
	return &Engine{
		opts:       deps.Options,
		classifier: classifier,
		detector:   NewDetector(deps.Options.Detector),
		now:        clock,
		logger:     deps.Logger,
	}
}

// ClassifierAvailable reports whether model-assisted NLP scoring is active.
func (e *Engine) ClassifierAvailable() bool {
	return e.classifier.Available()
}

// ComputeArticleScore scores one snapshot. Claims are only proposed when the
// article has none yet; cross-source scoring sees the pre-existing claims only.
func (e *Engine) ComputeArticleScore(ctx context.Context, article domain.ArticleSnapshot) domain.ScoreResult {
	community := e.opts.CommunityScore(article.Ratings)
	if e.opts.FreezeCommunityWhenLocked && article.Lock.SoftLocked && article.Scored {
		community = article.Existing.CommunityScore
	}

	components := Components{
		SourceTrust: SourceTrust(article.Source, e.opts.DefaultSourceTrust),
		NLP:         e.NLPScore(ctx, article.Content),
		Community:   community,
		CrossSource: CrossSourceScore(article.Claims),
	}
	overall := e.opts.Weights.Combine(components)
	signals := ExtractSignals(article.Content)

	breakdown := domain.ScoreBreakdown{
		SourceTrust:      components.SourceTrust,
		NLPScore:         components.NLP,
		CommunityScore:   components.Community,
		CrossSourceScore: components.CrossSource,
		Overall:          overall,
		Status:           StatusFor(overall),
		FactOpinionRatio: FactOpinionRatio(article.Content),
		HypeSentences:    signals.Hype,
		FactualSentences: signals.Factual,
	}

	result := domain.ScoreResult{
		Breakdown: breakdown,
		Verdict:   e.detector.Evaluate(article.Ratings, e.now()),
	}
	if len(article.Claims) == 0 {
		result.NewClaims = ExtractClaims(article.Content)
	}

	e.debug("article scored",
		"article_id", article.ID,
		"overall", overall,
		"status", breakdown.Status,
		"suspicious", result.Verdict.Suspicious,
		"classifier", e.classifier.Available(),
	)
	return result
}

func (e *Engine) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
