package ports

import (
	"context"

	"NewsCredibility/internal/domain"
)

// Classifier labels article text as credible or unreliable.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// ArticleRepository loads scoring snapshots and writes results back atomically.
type ArticleRepository interface {
	LoadArticle(ctx context.Context, id string) (domain.ArticleSnapshot, error)
	ApplyScore(ctx context.Context, update domain.ScoreUpdate) error
	ApplyOverride(ctx context.Context, articleID string, override domain.Override, audit domain.AuditEntry) error
	ClearOverride(ctx context.Context, articleID string) error
	SetSoftLock(ctx context.Context, articleID, reason string) error
	ClearSoftLock(ctx context.Context, articleID string) error
	ListArticleIDs(ctx context.Context) ([]string, error)
}

// UserRepository exposes rater histories for credibility recomputation.
type UserRepository interface {
	LoadUserHistory(ctx context.Context, userID string) (domain.UserHistory, error)
	UpdateUserCredibility(ctx context.Context, userID string, score float64, byCategory map[string]float64) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// AuditLog reads back the append-only score history.
type AuditLog interface {
	ListAudit(ctx context.Context, articleID string) ([]domain.AuditEntry, error)
}

// TextNormalizer turns stored article bodies into plain text before analysis.
type TextNormalizer interface {
	Normalize(raw string) string
}

// Notifier streams moderation alerts to Telegram or other channels.
type Notifier interface {
	PublishAlert(ctx context.Context, message string) error
}

// Scheduler controls when recompute jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(context.Context)) error
	Stop(ctx context.Context) error
}
