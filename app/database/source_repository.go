package database

import (
	"context"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepo)(nil)

// SourceRepo handles database operations for collection sources
type SourceRepo struct {
	db *DB
}

func NewSourceRepo(db *DB) *SourceRepo {
	return &SourceRepo{db: db}
}

// UpsertSource registers a configured source, updating its definition when
// the YAML changed. Returns the database ID.
func (r *SourceRepo) UpsertSource(ctx context.Context, name, sourceType, url, query, category string, enabled bool) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sources (name, type, url, query, category, enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			type = EXCLUDED.type,
			url = EXCLUDED.url,
			query = EXCLUDED.query,
			category = EXCLUDED.category,
			enabled = EXCLUDED.enabled
		RETURNING id
	`, name, sourceType, url, query, category, enabled).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to upsert source: %w", err)
	}

	return id, nil
}

func (r *SourceRepo) GetEnabledSources(ctx context.Context) ([]Source, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, COALESCE(url, ''), COALESCE(query, ''),
		       COALESCE(category, ''), enabled, last_fetched_at, created_at
		FROM sources
		WHERE enabled = TRUE
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.URL, &s.Query,
			&s.Category, &s.Enabled, &s.LastFetchedAt, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *SourceRepo) MarkFetched(ctx context.Context, sourceID string, fetchedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sources SET last_fetched_at = $2 WHERE id = $1
	`, sourceID, fetchedAt)
	if err != nil {
		return fmt.Errorf("failed to mark source fetched: %w", err)
	}

	return nil
}
