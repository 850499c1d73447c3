package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"NewsCredibility/internal/ports"
)

// PipelineDeps wires the batch recompute workflow.
type PipelineDeps struct {
	Manager  *ScoreManager
	Articles ports.ArticleRepository
	Users    ports.UserRepository
	Logger   *slog.Logger
}

// Pipeline rescores every article and then every rater, e.g. on a schedule.
type Pipeline struct {
	manager  *ScoreManager
	articles ports.ArticleRepository
	users    ports.UserRepository
	logger   *slog.Logger
}

// NewPipeline constructs the recompute pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		manager:  deps.Manager,
		articles: deps.Articles,
		users:    deps.Users,
		logger:   deps.Logger,
	}
}

// RecomputeAll rescores articles first so user accuracy is measured against
// fresh scores. A failing item does not stop the pass; errors are joined.
func (p *Pipeline) RecomputeAll(ctx context.Context) error {
	if p.manager == nil || p.articles == nil {
		return nil
	}

	ids, err := p.articles.ListArticleIDs(ctx)
	if err != nil {
		return fmt.Errorf("list articles: %w", err)
	}

	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := p.manager.UpdateArticleScores(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	var userIDs []string
	if p.users != nil {
		userIDs, err = p.users.ListUserIDs(ctx)
		if err != nil {
			return errors.Join(append(errs, fmt.Errorf("list users: %w", err))...)
		}
	}
	for _, id := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := p.manager.RecomputeUserCredibility(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	p.debug("recompute done", "articles", len(ids), "users", len(userIDs), "failures", len(errs))
	return errors.Join(errs...)
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
