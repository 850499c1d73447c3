package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsCredibility/internal/domain"
)

// LoadUserHistory returns the user and every rating they made, paired with the
// rated article's current overall score.
func (r *Repository) LoadUserHistory(ctx context.Context, userID string) (domain.UserHistory, error) {
	user, err := r.loadUser(ctx, userID)
	if err != nil {
		return domain.UserHistory{}, err
	}

	rows, err := queryBuilder(ctx, r.db, r.sb.
		Select("r.article_id", "a.category", "r.value", "a.overall_credibility").
		From("ratings r").
		Join("articles a ON a.id = r.article_id").
		Where(sq.Eq{"r.user_id": userID}).
		OrderBy("r.created_at", "r.id"))
	if err != nil {
		return domain.UserHistory{}, fmt.Errorf("query user ratings: %w", err)
	}
	defer rows.Close()

	history := domain.UserHistory{User: user}
	for rows.Next() {
		var rec domain.UserRatingRecord
		if err := rows.Scan(&rec.ArticleID, &rec.Category, &rec.Value, &rec.ArticleOverall); err != nil {
			return domain.UserHistory{}, fmt.Errorf("scan user rating: %w", err)
		}
		history.Ratings = append(history.Ratings, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.UserHistory{}, fmt.Errorf("rows iteration: %w", err)
	}
	return history, nil
}

func (r *Repository) loadUser(ctx context.Context, userID string) (domain.UserProfile, error) {
	row, err := queryRowBuilder(ctx, r.db, r.sb.
		Select("id", "username", "credibility_score", "category_credibility", "created_at").
		From("users").
		Where(sq.Eq{"id": userID}))
	if err != nil {
		return domain.UserProfile{}, err
	}

	var (
		user       domain.UserProfile
		categories string
	)
	err = row.Scan(&user.ID, &user.Username, &user.CredibilityScore, &categories, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("scan user: %w", err)
	}

	if user.CategoryCredibility, err = decodeCategories(categories); err != nil {
		return domain.UserProfile{}, err
	}
	return user, nil
}

// UpdateUserCredibility stores the recomputed overall and per-category scores.
func (r *Repository) UpdateUserCredibility(ctx context.Context, userID string, score float64, byCategory map[string]float64) error {
	categories, err := encodeCategories(byCategory)
	if err != nil {
		return err
	}
	return execOne(ctx, r.db, r.sb.Update("users").
		Set("credibility_score", score).
		Set("category_credibility", categories).
		Where(sq.Eq{"id": userID}), domain.ErrUserNotFound)
}

// ListUserIDs returns every user id.
func (r *Repository) ListUserIDs(ctx context.Context) ([]string, error) {
	return r.listIDs(ctx, r.sb.Select("id").From("users").OrderBy("id"))
}

func encodeCategories(m map[string]float64) (string, error) {
	if m == nil {
		m = map[string]float64{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode categories: %w", err)
	}
	return string(raw), nil
}

func decodeCategories(raw string) (map[string]float64, error) {
	out := map[string]float64{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}
