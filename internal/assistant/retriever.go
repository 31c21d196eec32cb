package assistant

//go:generate mockgen -destination=./retriever_mock_test.go -package=assistant -source=retriever.go ContextRetriever

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// ContextRetriever defines the contract for looking up product context for a query.
type ContextRetriever interface {
	// Retrieve returns the text of the k documents that best match the query.
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
	// AddDocument stores or replaces a product document.
	AddDocument(ctx context.Context, doc Document) error
}

// NewPostgresPool connects to the database and makes sure the schema exists.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return pool, nil
}

// postgresRetriever ranks part_documents with Postgres full-text search.
type postgresRetriever struct {
	db *pgxpool.Pool
}

// NewPostgresRetriever is the constructor for the retriever.
func NewPostgresRetriever(db *pgxpool.Pool) ContextRetriever {
	return &postgresRetriever{
		db: db,
	}
}

func (pr *postgresRetriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	// Any query lexeme is enough to match; documents sharing more of them rank higher.
	sql := `
		WITH q AS (
			SELECT replace(plainto_tsquery('english', $1)::text, '&', '|')::tsquery AS query
		)
		SELECT content
		FROM part_documents, q
		WHERE search @@ q.query
		ORDER BY ts_rank(search, q.query) DESC, part_number
		LIMIT $2
	`
	rows, err := pr.db.Query(ctx, sql, query, k)
	if err != nil {
		return nil, fmt.Errorf("could not query part documents: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("could not scan part document: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating part documents: %w", err)
	}
	return contents, nil
}

func (pr *postgresRetriever) AddDocument(ctx context.Context, doc Document) error {
	sql := `
		INSERT INTO part_documents (part_number, title, content, url, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (part_number) DO UPDATE
		SET title = EXCLUDED.title,
			content = EXCLUDED.content,
			url = EXCLUDED.url,
			updated_at = EXCLUDED.updated_at
	`
	_, err := pr.db.Exec(ctx, sql, doc.PartNumber, doc.Title, doc.Content, doc.URL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("could not store part document %s: %w", doc.PartNumber, err)
	}
	return nil
}

// noopRetriever is used when no database is configured.
type noopRetriever struct{}

// NewNoopRetriever creates a retriever that never finds context.
func NewNoopRetriever() ContextRetriever {
	return noopRetriever{}
}

func (noopRetriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	return nil, nil
}

func (noopRetriever) AddDocument(ctx context.Context, doc Document) error {
	return fmt.Errorf("no document store configured")
}
