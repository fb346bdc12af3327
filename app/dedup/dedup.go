package dedup

import (
	"fmt"

	"newsbrief/app/collector"
)

// Corpus is the slice of already-accepted state a batch is compared against:
// canonical URLs of all non-discarded items and titles fetched within the
// trailing window, in arrival order.
type Corpus struct {
	URLs   map[string]string // canonical URL -> item ID
	Titles []KnownTitle
}

type KnownTitle struct {
	ID    string
	Title string
}

// Decision records the outcome for one incoming item, in batch order.
type Decision struct {
	Item         collector.Item
	CanonicalURL string
	Duplicate    bool
	Reason       string
	// DuplicateOfID is set when the canonical item is already stored.
	DuplicateOfID string
	// DuplicateOfURL identifies a canonical item accepted earlier in the
	// same batch, before it has a store ID.
	DuplicateOfURL string
	// AlreadyStored marks an exact canonical-URL match against the stored
	// corpus. Re-submitting a stored URL is a no-op, not a new duplicate.
	AlreadyStored bool
}

type seenTitle struct {
	normalized string
	id         string // empty for batch-local items
	url        string // canonical URL, set for batch-local items
}

// Deduplicator decides which incoming items to accept and which to discard
// as duplicates. It makes no external calls; the store's unique index on the
// canonical URL remains the authoritative guard under concurrency.
type Deduplicator struct {
	similarityThreshold float64
}

func NewDeduplicator(similarityThreshold float64) *Deduplicator {
	return &Deduplicator{similarityThreshold: similarityThreshold}
}

// Run classifies a batch against the corpus. Exact canonical-URL matches are
// rejected first; survivors are compared by normalized-title similarity
// against the window and against earlier batch entries. Ties resolve by
// batch order: the first item processed wins and later ones are duplicates.
func (d *Deduplicator) Run(batch []collector.Item, corpus Corpus) []Decision {
	seenURLs := make(map[string]string, len(corpus.URLs)+len(batch))
	for url, id := range corpus.URLs {
		seenURLs[url] = id
	}
	batchURLs := make(map[string]bool, len(batch))

	seenTitles := make([]seenTitle, 0, len(corpus.Titles)+len(batch))
	for _, t := range corpus.Titles {
		if normalized := NormalizeTitle(t.Title); normalized != "" {
			seenTitles = append(seenTitles, seenTitle{normalized: normalized, id: t.ID})
		}
	}

	decisions := make([]Decision, 0, len(batch))

	for _, item := range batch {
		canonical := CanonicalURL(item.URL)
		decision := Decision{Item: item, CanonicalURL: canonical}

		if canonical != "" {
			if id, ok := seenURLs[canonical]; ok {
				decision.Duplicate = true
				decision.Reason = "duplicate URL"
				decision.DuplicateOfID = id
				if batchURLs[canonical] {
					decision.DuplicateOfURL = canonical
				} else {
					decision.AlreadyStored = true
				}
				decisions = append(decisions, decision)
				continue
			}
		}

		normalized := NormalizeTitle(item.Title)
		if normalized != "" {
			if dup, matched := d.matchTitle(normalized, seenTitles); matched {
				decision.Duplicate = true
				decision.DuplicateOfID = dup.id
				decision.DuplicateOfURL = dup.url
				if dup.normalized == normalized {
					decision.Reason = "duplicate title"
				} else {
					decision.Reason = fmt.Sprintf("similar title (threshold %.2f)", d.similarityThreshold)
				}
				decisions = append(decisions, decision)
				continue
			}
		}

		// Accepted: later batch entries compare against this item too.
		if canonical != "" {
			seenURLs[canonical] = ""
			batchURLs[canonical] = true
		}
		if normalized != "" {
			seenTitles = append(seenTitles, seenTitle{normalized: normalized, url: canonical})
		}
		decisions = append(decisions, decision)
	}

	return decisions
}

func (d *Deduplicator) matchTitle(normalized string, seen []seenTitle) (seenTitle, bool) {
	for _, s := range seen {
		if s.normalized == normalized {
			return s, true
		}
		if Similarity(normalized, s.normalized) >= d.similarityThreshold {
			return s, true
		}
	}
	return seenTitle{}, false
}
