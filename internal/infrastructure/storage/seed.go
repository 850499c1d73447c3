package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsCredibility/internal/domain"
)

// newUserCredibility is the score a user starts with when none is given.
const newUserCredibility = 50.0

// ArticleRecord is the input for creating an article row.
type ArticleRecord struct {
	ID        string
	Title     string
	Content   string
	Category  string
	SourceID  string
	CreatedAt time.Time
}

// RatingRecord is the input for storing a community rating.
type RatingRecord struct {
	ID        string
	ArticleID string
	UserID    string
	Value     float64
	Weight    float64
	IPAddress string
	CreatedAt time.Time
}

// UpsertSource creates or refreshes a publisher profile.
func (r *Repository) UpsertSource(ctx context.Context, src domain.SourceProfile) error {
	_, err := execBuilder(ctx, r.db, r.sb.Insert("sources").
		Columns("id", "name", "credibility_score", "articles_published", "corroboration_rate").
		Values(src.ID, src.Name, src.CredibilityScore, src.ArticlesPublished, src.CorroborationRate).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			credibility_score = excluded.credibility_score,
			articles_published = excluded.articles_published,
			corroboration_rate = excluded.corroboration_rate`))
	if err != nil {
		return fmt.Errorf("upsert source: %w", err)
	}
	return nil
}

// UpsertUser creates a user or updates the username. A zero score registers
// the user at the neutral starting credibility.
func (r *Repository) UpsertUser(ctx context.Context, u domain.UserProfile) error {
	categories, err := encodeCategories(u.CategoryCredibility)
	if err != nil {
		return err
	}
	score := u.CredibilityScore
	if score == 0 {
		score = newUserCredibility
	}
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
	}
	_, err = execBuilder(ctx, r.db, r.sb.Insert("users").
		Columns("id", "username", "credibility_score", "category_credibility", "created_at").
		Values(u.ID, u.Username, score, categories, createdAt.UTC()).
		Suffix(`ON CONFLICT (id) DO UPDATE SET username = excluded.username`))
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// CreateArticle inserts an unscored article.
func (r *Repository) CreateArticle(ctx context.Context, a ArticleRecord) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
	}
	category := a.Category
	if category == "" {
		category = "General"
	}
	_, err := execBuilder(ctx, r.db, r.sb.Insert("articles").
		Columns("id", "title", "content", "category", "source_id", "created_at", "updated_at").
		Values(a.ID, a.Title, a.Content, category, nullString(a.SourceID), createdAt.UTC(), createdAt.UTC()))
	if err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

// UpsertRating stores a rating; a second rating by the same user replaces the first.
func (r *Repository) UpsertRating(ctx context.Context, rt RatingRecord) error {
	createdAt := rt.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
	}
	weight := rt.Weight
	if weight == 0 {
		weight = 1
	}
	_, err := execBuilder(ctx, r.db, r.sb.Insert("ratings").
		Columns("id", "article_id", "user_id", "value", "vote_weight", "ip_address", "created_at").
		Values(newID(rt.ID), rt.ArticleID, rt.UserID, rt.Value, weight, nullString(rt.IPAddress), createdAt.UTC()).
		Suffix(`ON CONFLICT (article_id, user_id) DO UPDATE SET
			value = excluded.value,
			ip_address = excluded.ip_address`))
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// SetCorroboration records how many independent sources confirmed a claim.
func (r *Repository) SetCorroboration(ctx context.Context, claimID string, count int) error {
	return execOne(ctx, r.db, r.sb.Update("claims").
		Set("corroboration_count", count).
		Where(sq.Eq{"id": claimID}), fmt.Errorf("claim %s not found", claimID))
}
