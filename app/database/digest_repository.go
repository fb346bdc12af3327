package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ DigestRepository = (*DigestRepo)(nil)

// DigestRepo handles database operations for digests
type DigestRepo struct {
	db *DB
}

func NewDigestRepo(db *DB) *DigestRepo {
	return &DigestRepo{db: db}
}

// UpsertDigest creates the digest for a date or regenerates an existing one.
// The item list is replaced inside the transaction so readers never observe
// a partially rewritten digest.
func (r *DigestRepo) UpsertDigest(ctx context.Context, date time.Time, title, body string, annotationIDs []string) (*Digest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var digest Digest
	err = tx.QueryRowContext(ctx, `
		INSERT INTO digests (digest_date, title, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (digest_date) DO UPDATE SET
			title = EXCLUDED.title,
			body = EXCLUDED.body
		RETURNING id, digest_date, title, body, status, created_at, published_at
	`, date, title, body).Scan(&digest.ID, &digest.DigestDate, &digest.Title,
		&digest.Body, &digest.Status, &digest.CreatedAt, &digest.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert digest: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM digest_items WHERE digest_id = $1`, digest.ID); err != nil {
		return nil, fmt.Errorf("failed to clear digest items: %w", err)
	}

	for i, annotationID := range annotationIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO digest_items (digest_id, annotation_id, position)
			VALUES ($1, $2, $3)
		`, digest.ID, annotationID, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert digest item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit digest: %w", err)
	}

	return &digest, nil
}

func (r *DigestRepo) GetDigestByDate(ctx context.Context, date time.Time) (*Digest, error) {
	var digest Digest
	err := r.db.QueryRowContext(ctx, `
		SELECT id, digest_date, title, body, status, created_at, published_at
		FROM digests
		WHERE digest_date = $1
	`, date).Scan(&digest.ID, &digest.DigestDate, &digest.Title, &digest.Body,
		&digest.Status, &digest.CreatedAt, &digest.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get digest: %w", err)
	}

	return &digest, nil
}

func (r *DigestRepo) PublishDigest(ctx context.Context, date time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE digests
		SET status = 'published', published_at = NOW()
		WHERE digest_date = $1 AND status = 'draft'
	`, date)
	if err != nil {
		return fmt.Errorf("failed to publish digest: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check publish update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no draft digest for %s", date.Format("2006-01-02"))
	}

	return nil
}

func (r *DigestRepo) GetDigestCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM digests").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get digest count: %w", err)
	}
	return count, nil
}
