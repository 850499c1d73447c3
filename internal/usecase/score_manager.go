package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsCredibility/internal/credibility"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

// AutoLockReason is stored on articles locked by the manipulation detector.
const AutoLockReason = "Automatic soft-lock: Suspicious activity detected (voting pattern anomaly)"

// ScoreManagerDeps wires the engine and its driven adapters.
type ScoreManagerDeps struct {
	Engine     *credibility.Engine
	Articles   ports.ArticleRepository
	Users      ports.UserRepository
	Normalizer ports.TextNormalizer
	Notifier   ports.Notifier
	Clock      func() time.Time
	Logger     *slog.Logger
}

// ScoreManager runs scoring passes and admin actions against storage.
type ScoreManager struct {
	engine     *credibility.Engine
	articles   ports.ArticleRepository
	users      ports.UserRepository
	normalizer ports.TextNormalizer
	notifier   ports.Notifier
	now        func() time.Time
	logger     *slog.Logger
	locks      *keyedMutex
}

// NewScoreManager constructs the orchestration component.
func NewScoreManager(deps ScoreManagerDeps) *ScoreManager {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ScoreManager{
		engine:     deps.Engine,
		articles:   deps.Articles,
		users:      deps.Users,
		normalizer: deps.Normalizer,
		notifier:   deps.Notifier,
		now:        clock,
		logger:     deps.Logger,
		locks:      newKeyedMutex(),
	}
}

// UpdateArticleScores recomputes an article and writes the breakdown, lock state,
// first-pass claims and one audit entry in a single transaction.
func (m *ScoreManager) UpdateArticleScores(ctx context.Context, articleID string) (domain.ScoreBreakdown, error) {
	unlock := m.locks.Lock(articleID)
	defer unlock()

	return m.rescore(ctx, articleID)
}

// rescore runs one scoring pass. Callers hold the article lock.
func (m *ScoreManager) rescore(ctx context.Context, articleID string) (domain.ScoreBreakdown, error) {
	snapshot, err := m.articles.LoadArticle(ctx, articleID)
	if err != nil {
		return domain.ScoreBreakdown{}, fmt.Errorf("load article %s: %w", articleID, err)
	}
	if m.normalizer != nil {
		snapshot.Content = m.normalizer.Normalize(snapshot.Content)
	}

	result := m.engine.ComputeArticleScore(ctx, snapshot)
	breakdown := result.Breakdown
	if snapshot.Override != nil {
		breakdown.Overall = snapshot.Override.Score
		breakdown.Status = snapshot.Override.Status
	}

	lock := snapshot.Lock
	lock.SuspiciousActivity = result.Verdict.Suspicious
	newlyLocked := false
	if result.Verdict.Suspicious && !lock.SoftLocked {
		lock.SoftLocked = true
		lock.Reason = AutoLockReason
		newlyLocked = true
	}

	update := domain.ScoreUpdate{
		ArticleID: articleID,
		Breakdown: breakdown,
		Lock:      lock,
		NewClaims: result.NewClaims,
		Audit: domain.AuditEntry{
			ArticleID: articleID,
			OldScore:  snapshot.Existing.Overall,
			NewScore:  breakdown.Overall,
			Reason:    credibility.AutoReason(breakdown.Status),
			CreatedAt: m.now().UTC(),
		},
	}
	if err := m.articles.ApplyScore(ctx, update); err != nil {
		return domain.ScoreBreakdown{}, fmt.Errorf("apply score %s: %w", articleID, err)
	}

	m.info("article rescored",
		"article_id", articleID,
		"old", snapshot.Existing.Overall,
		"new", breakdown.Overall,
		"status", breakdown.Status,
		"suspicious", result.Verdict.Suspicious,
	)

	if newlyLocked {
		m.warn("article soft-locked", "article_id", articleID, "reason", result.Verdict.Reason)
		m.alert(ctx, fmt.Sprintf("Article %q (%s) soft-locked: %s", snapshot.Title, articleID, result.Verdict.Reason))
	}

	return breakdown, nil
}

// OverrideScore pins an operator score, bypassing the aggregator. Automatic
// passes keep the pinned score until ClearOverride.
func (m *ScoreManager) OverrideScore(ctx context.Context, articleID string, newScore float64, justification, actorID string) (domain.ScoreBreakdown, error) {
	unlock := m.locks.Lock(articleID)
	defer unlock()

	snapshot, err := m.articles.LoadArticle(ctx, articleID)
	if err != nil {
		return domain.ScoreBreakdown{}, fmt.Errorf("load article %s: %w", articleID, err)
	}

	next, err := credibility.Override(snapshot.Existing, newScore, justification)
	if err != nil {
		return domain.ScoreBreakdown{}, err
	}

	override := domain.Override{
		Score:         next.Overall,
		Status:        next.Status,
		Justification: justification,
		ActorID:       actorID,
	}
	audit := domain.AuditEntry{
		ArticleID:     articleID,
		OldScore:      snapshot.Existing.Overall,
		NewScore:      next.Overall,
		Reason:        credibility.OverrideReason(justification),
		IsAdminAction: true,
		ActorID:       actorID,
		CreatedAt:     m.now().UTC(),
	}
	if err := m.articles.ApplyOverride(ctx, articleID, override, audit); err != nil {
		return domain.ScoreBreakdown{}, fmt.Errorf("apply override %s: %w", articleID, err)
	}

	m.info("score overridden", "article_id", articleID, "actor", actorID, "score", next.Overall)
	return next, nil
}

// ClearOverride releases a pinned score and rescores the article.
func (m *ScoreManager) ClearOverride(ctx context.Context, articleID string) (domain.ScoreBreakdown, error) {
	unlock := m.locks.Lock(articleID)
	defer unlock()

	if err := m.articles.ClearOverride(ctx, articleID); err != nil {
		return domain.ScoreBreakdown{}, fmt.Errorf("clear override %s: %w", articleID, err)
	}
	return m.rescore(ctx, articleID)
}

// SoftLock locks an article on operator request.
func (m *ScoreManager) SoftLock(ctx context.Context, articleID, reason string) error {
	unlock := m.locks.Lock(articleID)
	defer unlock()

	if err := m.articles.SetSoftLock(ctx, articleID, reason); err != nil {
		return fmt.Errorf("soft-lock %s: %w", articleID, err)
	}
	return nil
}

// Unlock is the only path that clears a soft lock.
func (m *ScoreManager) Unlock(ctx context.Context, articleID string) error {
	unlock := m.locks.Lock(articleID)
	defer unlock()

	if err := m.articles.ClearSoftLock(ctx, articleID); err != nil {
		return fmt.Errorf("remove soft-lock %s: %w", articleID, err)
	}
	return nil
}

// RatingsBreakdown returns the rating distribution of an article.
func (m *ScoreManager) RatingsBreakdown(ctx context.Context, articleID string) (domain.RatingDistribution, error) {
	snapshot, err := m.articles.LoadArticle(ctx, articleID)
	if err != nil {
		return domain.RatingDistribution{}, fmt.Errorf("load article %s: %w", articleID, err)
	}
	return credibility.Distribution(snapshot.Ratings), nil
}

// RecomputeUserCredibility refreshes a rater's credibility from rating accuracy.
// Below the sample threshold it returns 50 and leaves storage untouched.
func (m *ScoreManager) RecomputeUserCredibility(ctx context.Context, userID string) (float64, error) {
	if m.users == nil {
		return 0, fmt.Errorf("user repository is not configured")
	}

	history, err := m.users.LoadUserHistory(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load user %s: %w", userID, err)
	}

	score, ok := credibility.RecomputeUserCredibility(history.Ratings)
	if !ok {
		return score, nil
	}

	byCategory := credibility.CategoryCredibility(history.Ratings)
	if err := m.users.UpdateUserCredibility(ctx, userID, score, byCategory); err != nil {
		return 0, fmt.Errorf("update user %s: %w", userID, err)
	}

	m.info("user credibility recomputed", "user_id", userID, "score", score, "ratings", len(history.Ratings))
	return score, nil
}

func (m *ScoreManager) alert(ctx context.Context, message string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.PublishAlert(ctx, message); err != nil {
		m.warn("publish alert failed", "error", err)
	}
}

func (m *ScoreManager) info(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Info(msg, args...)
	}
}

func (m *ScoreManager) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
