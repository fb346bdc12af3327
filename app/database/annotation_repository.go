package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

var _ AnnotationRepository = (*AnnotationRepo)(nil)

// AnnotationRepo handles database operations for annotations
type AnnotationRepo struct {
	db *DB
	sb sq.StatementBuilderType
}

func NewAnnotationRepo(db *DB) *AnnotationRepo {
	return &AnnotationRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AnnotationRepo) InsertAnnotation(ctx context.Context, a Annotation) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO annotations (item_id, summary, keywords, relevance_score,
		                         quality_score, timeliness_score, total_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, a.ItemID, a.Summary, pq.Array(a.Keywords), a.RelevanceScore,
		a.QualityScore, a.TimelinessScore, a.TotalScore).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert annotation: %w", err)
	}

	return id, nil
}

// GetDigestCandidates returns annotations of processed items that meet the
// score threshold, were published within the window, and are not explicitly
// rejected by a reviewer. Final ordering and capping happen in the assembler.
func (r *AnnotationRepo) GetDigestCandidates(ctx context.Context, minScore int, since time.Time) ([]DigestCandidate, error) {
	query, args, err := r.sb.
		Select("a.id", "a.item_id", "a.summary", "a.keywords",
			"a.relevance_score", "a.quality_score", "a.timeliness_score",
			"a.total_score", "a.approved", "a.processed_at",
			"i.canonical_url", "i.title", "i.category", "i.published_at").
		From("annotations a").
		Join("raw_items i ON i.id = a.item_id").
		Where(sq.Eq{"i.status": StatusProcessed}).
		Where(sq.GtOrEq{"a.total_score": minScore}).
		Where(sq.GtOrEq{"i.published_at": since}).
		Where(sq.Or{sq.Eq{"a.approved": nil}, sq.Eq{"a.approved": true}}).
		OrderBy("a.total_score DESC", "i.published_at DESC", "i.canonical_url").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get digest candidates: %w", err)
	}
	defer rows.Close()

	var candidates []DigestCandidate
	for rows.Next() {
		var c DigestCandidate
		err := rows.Scan(&c.ID, &c.ItemID, &c.Summary, pq.Array(&c.Keywords),
			&c.RelevanceScore, &c.QualityScore, &c.TimelinessScore,
			&c.TotalScore, &c.Approved, &c.ProcessedAt,
			&c.CanonicalURL, &c.ItemTitle, &c.ItemCategory, &c.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate row: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidate rows: %w", err)
	}

	return candidates, nil
}

func (r *AnnotationRepo) SetApproval(ctx context.Context, annotationID string, approved bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE annotations SET approved = $2 WHERE id = $1
	`, annotationID, approved)
	if err != nil {
		return fmt.Errorf("failed to set approval: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check approval update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("annotation %s not found", annotationID)
	}

	return nil
}

func (r *AnnotationRepo) GetAnnotationCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM annotations").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get annotation count: %w", err)
	}
	return count, nil
}
