package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsCredibility/internal/ports"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Repository persists articles, ratings, claims, users and the audit trail.
// The same SQL runs on Postgres and SQLite; only the placeholder style differs.
type Repository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var (
	_ ports.ArticleRepository = (*Repository)(nil)
	_ ports.UserRepository    = (*Repository)(nil)
	_ ports.AuditLog          = (*Repository)(nil)
)

// Open connects to the database and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*Repository, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// each sqlite connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	}

	repo, err := New(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// New wraps an existing sql.DB for the given driver.
func New(db *sql.DB, driver string) (*Repository, error) {
	var format sq.PlaceholderFormat
	switch driver {
	case DriverPostgres:
		format = sq.Dollar
	case DriverSQLite:
		format = sq.Question
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	return &Repository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(format),
		now: time.Now,
	}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate creates missing tables. Statements are portable across both drivers.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		credibility_score DOUBLE PRECISION NOT NULL DEFAULT 50,
		articles_published INTEGER NOT NULL DEFAULT 0,
		corroboration_rate DOUBLE PRECISION NOT NULL DEFAULT 0.5
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		credibility_score DOUBLE PRECISION NOT NULL DEFAULT 50,
		category_credibility TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'General',
		source_id TEXT,
		source_trust_score DOUBLE PRECISION NOT NULL DEFAULT 50,
		nlp_score DOUBLE PRECISION NOT NULL DEFAULT 50,
		community_score DOUBLE PRECISION NOT NULL DEFAULT 50,
		cross_source_score DOUBLE PRECISION NOT NULL DEFAULT 50,
		overall_credibility DOUBLE PRECISION NOT NULL DEFAULT 50,
		credibility_status TEXT NOT NULL DEFAULT 'Under Review',
		fact_opinion_ratio DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		hype_sentences TEXT NOT NULL DEFAULT '[]',
		factual_sentences TEXT NOT NULL DEFAULT '[]',
		is_soft_locked BOOLEAN NOT NULL DEFAULT FALSE,
		soft_lock_reason TEXT NOT NULL DEFAULT '',
		suspicious_activity_detected BOOLEAN NOT NULL DEFAULT FALSE,
		override_score DOUBLE PRECISION,
		override_status TEXT,
		override_justification TEXT,
		override_actor TEXT,
		scored_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL REFERENCES articles(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		value DOUBLE PRECISION NOT NULL,
		vote_weight DOUBLE PRECISION NOT NULL DEFAULT 1,
		ip_address TEXT,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (article_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id)`,
	`CREATE TABLE IF NOT EXISTS claims (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL REFERENCES articles(id),
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		claim_text TEXT NOT NULL,
		corroboration_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_article ON claims(article_id)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		article_id TEXT NOT NULL REFERENCES articles(id),
		old_score DOUBLE PRECISION NOT NULL,
		new_score DOUBLE PRECISION NOT NULL,
		reason TEXT NOT NULL,
		is_admin_action BOOLEAN NOT NULL DEFAULT FALSE,
		admin_id TEXT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_article ON audit_logs(article_id)`,
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execBuilder(ctx context.Context, db execer, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return db.ExecContext(ctx, query, args...)
}

func queryBuilder(ctx context.Context, db querier, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return db.QueryContext(ctx, query, args...)
}

func queryRowBuilder(ctx context.Context, db querier, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return db.QueryRowContext(ctx, query, args...), nil
}

// execOne runs an UPDATE and maps zero affected rows to notFound.
func execOne(ctx context.Context, db execer, b sq.Sqlizer, notFound error) error {
	res, err := execBuilder(ctx, db, b)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
