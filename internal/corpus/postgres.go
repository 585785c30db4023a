package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/language-coach/sentence-search/internal/index"
	"github.com/language-coach/sentence-search/pkg/postgres"
)

// PostgresStore implements Store on top of the sentences and documents
// tables.
type PostgresStore struct {
	client *postgres.Client
}

// NewPostgresStore wraps an existing Postgres client.
func NewPostgresStore(client *postgres.Client) *PostgresStore {
	return &PostgresStore{client: client}
}

// EnsureSchema creates the corpus tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	id        BIGSERIAL PRIMARY KEY,
	title     TEXT NOT NULL,
	category  TEXT NOT NULL DEFAULT '',
	language  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sentences (
	id          BIGSERIAL PRIMARY KEY,
	text        TEXT NOT NULL,
	language    TEXT NOT NULL,
	document_id BIGINT REFERENCES documents(id)
);
CREATE INDEX IF NOT EXISTS idx_sentences_language ON sentences(language);`
	if _, err := s.client.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure corpus schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) FetchSentences(ctx context.Context, language string, fn func(SentenceRecord) error) error {
	rows, err := s.client.DB.QueryContext(ctx,
		`SELECT id, text, language FROM sentences WHERE language = $1 ORDER BY id`, language)
	if err != nil {
		return fmt.Errorf("query sentences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec SentenceRecord
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Language); err != nil {
			return fmt.Errorf("scan sentence: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate sentences: %w", err)
	}
	return nil
}

func (s *PostgresStore) FetchMetadata(ctx context.Context, ids []int64) (map[int64]index.Metadata, error) {
	if len(ids) == 0 {
		return map[int64]index.Metadata{}, nil
	}

	rows, err := s.client.DB.QueryContext(ctx, `
SELECT s.id, s.document_id, d.title, d.category
FROM sentences s
JOIN documents d ON d.id = s.document_id
WHERE s.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query sentence metadata: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]index.Metadata, len(ids))
	for rows.Next() {
		var (
			id  int64
			doc sql.NullInt64
			md  index.Metadata
		)
		if err := rows.Scan(&id, &doc, &md.SourceTitle, &md.SourceCategory); err != nil {
			return nil, fmt.Errorf("scan sentence metadata: %w", err)
		}
		md.SourceDocumentID = doc.Int64
		out[id] = md
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentence metadata: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveSentence(ctx context.Context, rec SentenceRecord) (int64, error) {
	var docID sql.NullInt64
	if rec.SourceDocumentID != 0 {
		docID = sql.NullInt64{Int64: rec.SourceDocumentID, Valid: true}
	}

	var id int64
	err := s.client.DB.QueryRowContext(ctx,
		`INSERT INTO sentences (text, language, document_id) VALUES ($1, $2, $3) RETURNING id`,
		rec.Text, rec.Language, docID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert sentence: %w", err)
	}
	return id, nil
}
