package database

import (
	"time"
)

// RawItem lifecycle statuses, mirroring the raw_items check constraint.
const (
	StatusPending   = "pending"
	StatusProcessed = "processed"
	StatusDiscarded = "discarded"
)

// Digest statuses, mirroring the digests check constraint.
const (
	DigestStatusDraft     = "draft"
	DigestStatusPublished = "published"
)

type Source struct {
	ID            string // Database UUID
	Name          string // Source identifier from sources.yml
	Type          string // rss, twitter, search
	URL           string
	Query         string
	Category      string
	Enabled       bool
	LastFetchedAt *time.Time
	CreatedAt     time.Time
}

type RawItem struct {
	ID            string
	SourceID      string
	CanonicalURL  string
	Title         string
	Body          string
	Author        string
	PublishedAt   time.Time
	Category      string
	Status        string
	DuplicateOf   *string // ID of the canonical item this one duplicates
	DiscardReason string
	FetchedAt     time.Time
	CreatedAt     time.Time
}

type Annotation struct {
	ID              string
	ItemID          string
	Summary         string
	Keywords        []string
	RelevanceScore  int
	QualityScore    int
	TimelinessScore int
	TotalScore      int
	Approved        *bool // nil = not reviewed
	ProcessedAt     time.Time
}

type Digest struct {
	ID          string
	DigestDate  time.Time // date component only
	Title       string
	Body        string
	Status      string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// DigestCandidate joins an annotation with the raw item fields the assembler
// needs for selection, ordering, and rendering.
type DigestCandidate struct {
	Annotation
	CanonicalURL string
	ItemTitle    string
	ItemCategory string
	PublishedAt  time.Time
}

// RecentTitle is the slice of an item the deduplicator compares titles against.
type RecentTitle struct {
	ID        string
	Title     string
	FetchedAt time.Time
}

// ItemCounts aggregates raw item statuses for the stats endpoint.
type ItemCounts struct {
	Pending   int
	Processed int
	Discarded int
}
