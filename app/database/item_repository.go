package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var _ ItemRepository = (*ItemRepo)(nil)

// ItemRepo handles database operations for raw items
type ItemRepo struct {
	db *DB
}

func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// InsertItem stores an accepted item as pending. The partial unique index on
// canonical_url is the authoritative duplicate guard: a concurrent insert of
// the same URL loses the race here, not in the in-process check.
func (r *ItemRepo) InsertItem(ctx context.Context, item RawItem) (string, bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO raw_items (source_id, canonical_url, title, body, author,
		                       published_at, category, status, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		ON CONFLICT (canonical_url) WHERE status <> 'discarded' DO NOTHING
		RETURNING id
	`, nullable(item.SourceID), item.CanonicalURL, item.Title, item.Body,
		item.Author, item.PublishedAt, item.Category, item.FetchedAt).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		// Conflict with an existing active item: expected, not an error.
		return "", false, nil
	}
	if isUniqueViolation(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to insert item: %w", err)
	}

	return id, true, nil
}

// InsertDiscarded stores a duplicate item as discarded with a reference to
// the canonical item, for auditability.
func (r *ItemRepo) InsertDiscarded(ctx context.Context, item RawItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO raw_items (source_id, canonical_url, title, body, author,
		                       published_at, category, status, duplicate_of,
		                       discard_reason, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'discarded', $8, $9, $10)
	`, nullable(item.SourceID), item.CanonicalURL, item.Title, item.Body,
		item.Author, item.PublishedAt, item.Category, item.DuplicateOf,
		item.DiscardReason, item.FetchedAt)
	if err != nil {
		return fmt.Errorf("failed to insert discarded item: %w", err)
	}

	return nil
}

func (r *ItemRepo) GetPendingItems(ctx context.Context, limit int) ([]RawItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, COALESCE(source_id::text, ''), canonical_url, title, body,
		       author, published_at, category, status, duplicate_of::text,
		       discard_reason, fetched_at, created_at
		FROM raw_items
		WHERE status = 'pending'
		ORDER BY fetched_at, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// GetRecentTitles returns titles of non-discarded items fetched within the
// trailing window, oldest first so earlier arrivals win similarity ties.
func (r *ItemRepo) GetRecentTitles(ctx context.Context, since time.Time) ([]RecentTitle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, fetched_at
		FROM raw_items
		WHERE status <> 'discarded' AND fetched_at >= $1
		ORDER BY fetched_at, id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent titles: %w", err)
	}
	defer rows.Close()

	var titles []RecentTitle
	for rows.Next() {
		var t RecentTitle
		if err := rows.Scan(&t.ID, &t.Title, &t.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan title row: %w", err)
		}
		titles = append(titles, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating title rows: %w", err)
	}

	return titles, nil
}

// GetActiveURLs returns canonical URL -> item ID for all non-discarded items.
func (r *ItemRepo) GetActiveURLs(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT canonical_url, id FROM raw_items WHERE status <> 'discarded'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active urls: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]string)
	for rows.Next() {
		var url, id string
		if err := rows.Scan(&url, &id); err != nil {
			return nil, fmt.Errorf("failed to scan url row: %w", err)
		}
		urls[url] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating url rows: %w", err)
	}

	return urls, nil
}

func (r *ItemRepo) MarkProcessed(ctx context.Context, itemID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE raw_items SET status = 'processed' WHERE id = $1 AND status = 'pending'
	`, itemID)
	if err != nil {
		return fmt.Errorf("failed to mark item processed: %w", err)
	}

	return nil
}

func (r *ItemRepo) MarkDiscarded(ctx context.Context, itemID, reason string, duplicateOf *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE raw_items
		SET status = 'discarded', discard_reason = $2, duplicate_of = $3
		WHERE id = $1
	`, itemID, reason, duplicateOf)
	if err != nil {
		return fmt.Errorf("failed to mark item discarded: %w", err)
	}

	return nil
}

func (r *ItemRepo) GetItemCounts(ctx context.Context) (ItemCounts, error) {
	var counts ItemCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'processed'),
			COUNT(*) FILTER (WHERE status = 'discarded')
		FROM raw_items
	`).Scan(&counts.Pending, &counts.Processed, &counts.Discarded)
	if err != nil {
		return ItemCounts{}, fmt.Errorf("failed to get item counts: %w", err)
	}

	return counts, nil
}

func scanItems(rows *sql.Rows) ([]RawItem, error) {
	var items []RawItem
	for rows.Next() {
		var item RawItem
		var duplicateOf sql.NullString
		err := rows.Scan(&item.ID, &item.SourceID, &item.CanonicalURL,
			&item.Title, &item.Body, &item.Author, &item.PublishedAt,
			&item.Category, &item.Status, &duplicateOf, &item.DiscardReason,
			&item.FetchedAt, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		if duplicateOf.Valid {
			item.DuplicateOf = &duplicateOf.String
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
