package database

import (
	"context"
	"time"
)

type SourceRepository interface {
	UpsertSource(ctx context.Context, name, sourceType, url, query, category string, enabled bool) (string, error)
	GetEnabledSources(ctx context.Context) ([]Source, error)
	MarkFetched(ctx context.Context, sourceID string, fetchedAt time.Time) error
}

type ItemRepository interface {
	// InsertItem persists a new raw item. It reports inserted=false when the
	// canonical URL already exists among non-discarded items; the unique
	// index makes this safe under concurrent insertion.
	InsertItem(ctx context.Context, item RawItem) (id string, inserted bool, err error)
	InsertDiscarded(ctx context.Context, item RawItem) error

	GetPendingItems(ctx context.Context, limit int) ([]RawItem, error)
	GetRecentTitles(ctx context.Context, since time.Time) ([]RecentTitle, error)
	GetActiveURLs(ctx context.Context) (map[string]string, error)

	MarkProcessed(ctx context.Context, itemID string) error
	MarkDiscarded(ctx context.Context, itemID, reason string, duplicateOf *string) error

	GetItemCounts(ctx context.Context) (ItemCounts, error)
}

type AnnotationRepository interface {
	InsertAnnotation(ctx context.Context, a Annotation) (string, error)
	GetDigestCandidates(ctx context.Context, minScore int, since time.Time) ([]DigestCandidate, error)
	SetApproval(ctx context.Context, annotationID string, approved bool) error
	GetAnnotationCount(ctx context.Context) (int, error)
}

type DigestRepository interface {
	// UpsertDigest creates or regenerates the digest for a date, replacing
	// its item list in the same transaction.
	UpsertDigest(ctx context.Context, date time.Time, title, body string, annotationIDs []string) (*Digest, error)
	GetDigestByDate(ctx context.Context, date time.Time) (*Digest, error)
	PublishDigest(ctx context.Context, date time.Time) error
	GetDigestCount(ctx context.Context) (int, error)
}
