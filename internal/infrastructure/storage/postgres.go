package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"flashpost/internal/ports"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PostgresStore persists processed article ids for deduplication. The
// check-then-insert is not atomic; overlapping runs are not supported.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DedupStore = (*PostgresStore)(nil)

// Open connects to Postgres and applies pending migrations.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return NewPostgresStore(db), nil
}

// NewPostgresStore wires an existing sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Exists reports whether a processed record for the id is already stored.
func (s *PostgresStore) Exists(ctx context.Context, articleID string) (bool, error) {
	query, args, err := existsQuery(s.builder, articleID)
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("query processed: %w", err)
	}

	return count > 0, nil
}

// Record inserts a new processed record. It does not enforce uniqueness; the
// "never reprocess" invariant is upheld by calling Exists first.
func (s *PostgresStore) Record(ctx context.Context, articleID, title string) error {
	query, args, err := recordQuery(s.builder, articleID, title)
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert processed: %w", err)
	}

	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func existsQuery(builder sq.StatementBuilderType, articleID string) (string, []any, error) {
	return builder.
		Select("COUNT(*)").
		From("processed_articles").
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
}

func recordQuery(builder sq.StatementBuilderType, articleID, title string) (string, []any, error) {
	return builder.
		Insert("processed_articles").
		Columns("article_id", "title").
		Values(articleID, title).
		ToSql()
}
