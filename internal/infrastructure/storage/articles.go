package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"NewsCredibility/internal/domain"
)

var articleColumns = []string{
	"id", "title", "content", "category", "source_id",
	"source_trust_score", "nlp_score", "community_score", "cross_source_score",
	"overall_credibility", "credibility_status", "fact_opinion_ratio",
	"hype_sentences", "factual_sentences",
	"is_soft_locked", "soft_lock_reason", "suspicious_activity_detected",
	"override_score", "override_status", "override_justification", "override_actor",
	"scored_at", "created_at",
}

// LoadArticle builds a scoring snapshot from the article, its source, ratings and claims.
func (r *Repository) LoadArticle(ctx context.Context, id string) (domain.ArticleSnapshot, error) {
	row, err := queryRowBuilder(ctx, r.db, r.sb.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.ArticleSnapshot{}, err
	}

	var (
		snap                    domain.ArticleSnapshot
		sourceID                sql.NullString
		status                  string
		hype, factual           string
		overrideScore           sql.NullFloat64
		overrideStatus          sql.NullString
		overrideJust, overActor sql.NullString
		scoredAt                sql.NullTime
	)
	err = row.Scan(
		&snap.ID, &snap.Title, &snap.Content, &snap.Category, &sourceID,
		&snap.Existing.SourceTrust, &snap.Existing.NLPScore, &snap.Existing.CommunityScore, &snap.Existing.CrossSourceScore,
		&snap.Existing.Overall, &status, &snap.Existing.FactOpinionRatio,
		&hype, &factual,
		&snap.Lock.SoftLocked, &snap.Lock.Reason, &snap.Lock.SuspiciousActivity,
		&overrideScore, &overrideStatus, &overrideJust, &overActor,
		&scoredAt, &snap.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ArticleSnapshot{}, domain.ErrArticleNotFound
	}
	if err != nil {
		return domain.ArticleSnapshot{}, fmt.Errorf("scan article: %w", err)
	}

	snap.Existing.Status = domain.CredibilityStatus(status)
	snap.Scored = scoredAt.Valid
	if snap.Existing.HypeSentences, err = decodeSentences(hype); err != nil {
		return domain.ArticleSnapshot{}, err
	}
	if snap.Existing.FactualSentences, err = decodeSentences(factual); err != nil {
		return domain.ArticleSnapshot{}, err
	}
	if overrideScore.Valid {
		snap.Override = &domain.Override{
			Score:         overrideScore.Float64,
			Status:        domain.CredibilityStatus(overrideStatus.String),
			Justification: overrideJust.String,
			ActorID:       overActor.String,
		}
	}

	if sourceID.Valid {
		if snap.Source, err = r.loadSource(ctx, sourceID.String); err != nil {
			return domain.ArticleSnapshot{}, err
		}
	}
	if snap.Ratings, err = r.loadRatings(ctx, id); err != nil {
		return domain.ArticleSnapshot{}, err
	}
	if snap.Claims, err = r.loadClaims(ctx, id); err != nil {
		return domain.ArticleSnapshot{}, err
	}

	return snap, nil
}

// loadSource returns nil for a dangling source id; the engine treats it as unknown.
func (r *Repository) loadSource(ctx context.Context, id string) (*domain.SourceProfile, error) {
	row, err := queryRowBuilder(ctx, r.db, r.sb.
		Select("id", "name", "credibility_score", "articles_published", "corroboration_rate").
		From("sources").
		Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}

	var src domain.SourceProfile
	err = row.Scan(&src.ID, &src.Name, &src.CredibilityScore, &src.ArticlesPublished, &src.CorroborationRate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan source: %w", err)
	}
	return &src, nil
}

func (r *Repository) loadRatings(ctx context.Context, articleID string) ([]domain.RatingSnapshot, error) {
	rows, err := queryBuilder(ctx, r.db, r.sb.
		Select("r.user_id", "r.value", "r.vote_weight", "r.ip_address", "r.created_at", "u.created_at", "u.credibility_score").
		From("ratings r").
		Join("users u ON u.id = r.user_id").
		Where(sq.Eq{"r.article_id": articleID}).
		OrderBy("r.created_at", "r.id"))
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []domain.RatingSnapshot
	for rows.Next() {
		var (
			rt domain.RatingSnapshot
			ip sql.NullString
		)
		if err := rows.Scan(&rt.UserID, &rt.Value, &rt.Weight, &ip, &rt.CreatedAt, &rt.UserCreatedAt, &rt.UserCredibilityScore); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		rt.IPAddress = ip.String
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ratings, nil
}

func (r *Repository) loadClaims(ctx context.Context, articleID string) ([]domain.Claim, error) {
	rows, err := queryBuilder(ctx, r.db, r.sb.
		Select("id", "kind", "claim_text", "corroboration_count").
		From("claims").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("position"))
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		var (
			c    domain.Claim
			kind string
		)
		if err := rows.Scan(&c.ID, &kind, &c.Text, &c.CorroborationCount); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		c.Kind = domain.ClaimKind(kind)
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return claims, nil
}

// ApplyScore writes one scoring pass. Claims are inserted only while the article
// still has none, and the audit row shares the transaction: if any write fails
// nothing is committed.
func (r *Repository) ApplyScore(ctx context.Context, u domain.ScoreUpdate) error {
	hype, err := encodeSentences(u.Breakdown.HypeSentences)
	if err != nil {
		return err
	}
	factual, err := encodeSentences(u.Breakdown.FactualSentences)
	if err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		now := r.now().UTC()
		err := execOne(ctx, tx, r.sb.Update("articles").
			Set("source_trust_score", u.Breakdown.SourceTrust).
			Set("nlp_score", u.Breakdown.NLPScore).
			Set("community_score", u.Breakdown.CommunityScore).
			Set("cross_source_score", u.Breakdown.CrossSourceScore).
			Set("overall_credibility", u.Breakdown.Overall).
			Set("credibility_status", string(u.Breakdown.Status)).
			Set("fact_opinion_ratio", u.Breakdown.FactOpinionRatio).
			Set("hype_sentences", hype).
			Set("factual_sentences", factual).
			Set("is_soft_locked", u.Lock.SoftLocked).
			Set("soft_lock_reason", u.Lock.Reason).
			Set("suspicious_activity_detected", u.Lock.SuspiciousActivity).
			Set("scored_at", now).
			Set("updated_at", now).
			Where(sq.Eq{"id": u.ArticleID}), domain.ErrArticleNotFound)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}

		if err := r.insertClaimsOnce(ctx, tx, u.ArticleID, u.NewClaims, now); err != nil {
			return err
		}

		return r.appendAudit(ctx, tx, u.Audit)
	})
}

func (r *Repository) insertClaimsOnce(ctx context.Context, tx *sql.Tx, articleID string, claims []domain.Claim, now time.Time) error {
	if len(claims) == 0 {
		return nil
	}

	row, err := queryRowBuilder(ctx, tx, r.sb.Select("COUNT(*)").From("claims").Where(sq.Eq{"article_id": articleID}))
	if err != nil {
		return err
	}
	var existing int
	if err := row.Scan(&existing); err != nil {
		return fmt.Errorf("count claims: %w", err)
	}
	if existing > 0 {
		return nil
	}

	insert := r.sb.Insert("claims").
		Columns("id", "article_id", "position", "kind", "claim_text", "corroboration_count", "created_at")
	for i, c := range claims {
		insert = insert.Values(newID(c.ID), articleID, i, string(c.Kind), c.Text, c.CorroborationCount, now)
	}
	if _, err := execBuilder(ctx, tx, insert); err != nil {
		return fmt.Errorf("insert claims: %w", err)
	}
	return nil
}

func (r *Repository) appendAudit(ctx context.Context, tx *sql.Tx, a domain.AuditEntry) error {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now().UTC()
	}
	_, err := execBuilder(ctx, tx, r.sb.Insert("audit_logs").
		Columns("id", "article_id", "old_score", "new_score", "reason", "is_admin_action", "admin_id", "created_at").
		Values(newID(a.ID), a.ArticleID, a.OldScore, a.NewScore, a.Reason, a.IsAdminAction, nullString(a.ActorID), createdAt))
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// ApplyOverride pins the operator score and appends the admin audit entry atomically.
func (r *Repository) ApplyOverride(ctx context.Context, articleID string, o domain.Override, audit domain.AuditEntry) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		err := execOne(ctx, tx, r.sb.Update("articles").
			Set("overall_credibility", o.Score).
			Set("credibility_status", string(o.Status)).
			Set("override_score", o.Score).
			Set("override_status", string(o.Status)).
			Set("override_justification", o.Justification).
			Set("override_actor", nullString(o.ActorID)).
			Set("updated_at", r.now().UTC()).
			Where(sq.Eq{"id": articleID}), domain.ErrArticleNotFound)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		return r.appendAudit(ctx, tx, audit)
	})
}

// ClearOverride releases a pinned score; the next pass recomputes it.
func (r *Repository) ClearOverride(ctx context.Context, articleID string) error {
	return execOne(ctx, r.db, r.sb.Update("articles").
		Set("override_score", nil).
		Set("override_status", nil).
		Set("override_justification", nil).
		Set("override_actor", nil).
		Set("updated_at", r.now().UTC()).
		Where(sq.Eq{"id": articleID}), domain.ErrArticleNotFound)
}

// SetSoftLock locks an article with an operator reason.
func (r *Repository) SetSoftLock(ctx context.Context, articleID, reason string) error {
	return execOne(ctx, r.db, r.sb.Update("articles").
		Set("is_soft_locked", true).
		Set("soft_lock_reason", reason).
		Set("updated_at", r.now().UTC()).
		Where(sq.Eq{"id": articleID}), domain.ErrArticleNotFound)
}

// ClearSoftLock removes a soft lock, automatic or manual.
func (r *Repository) ClearSoftLock(ctx context.Context, articleID string) error {
	return execOne(ctx, r.db, r.sb.Update("articles").
		Set("is_soft_locked", false).
		Set("soft_lock_reason", "").
		Set("updated_at", r.now().UTC()).
		Where(sq.Eq{"id": articleID}), domain.ErrArticleNotFound)
}

// ListArticleIDs returns every article id, oldest first.
func (r *Repository) ListArticleIDs(ctx context.Context) ([]string, error) {
	return r.listIDs(ctx, r.sb.Select("id").From("articles").OrderBy("created_at", "id"))
}

// ListAudit returns the audit trail of an article in insertion order.
func (r *Repository) ListAudit(ctx context.Context, articleID string) ([]domain.AuditEntry, error) {
	rows, err := queryBuilder(ctx, r.db, r.sb.
		Select("id", "article_id", "old_score", "new_score", "reason", "is_admin_action", "admin_id", "created_at").
		From("audit_logs").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("query audit: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e     domain.AuditEntry
			actor sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.ArticleID, &e.OldScore, &e.NewScore, &e.Reason, &e.IsAdminAction, &actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		e.ActorID = actor.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return entries, nil
}

func (r *Repository) listIDs(ctx context.Context, b sq.SelectBuilder) ([]string, error) {
	rows, err := queryBuilder(ctx, r.db, b)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return ids, nil
}

func encodeSentences(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode sentences: %w", err)
	}
	return string(raw), nil
}

func decodeSentences(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode sentences: %w", err)
	}
	return out, nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	if v7, err := uuid.NewV7(); err == nil {
		return v7.String()
	}
	return uuid.NewString()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
