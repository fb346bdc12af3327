package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"newsbrief/app/database"
)

type Options struct {
	MinScore         int
	MaxItems         int
	WindowHours      int
	CategoryPriority []string
}

// Section groups the digest entries for one category, in rendering order.
type Section struct {
	Category string
	Items    []database.DigestCandidate
}

// Assembler turns annotated items into the daily digest document.
type Assembler struct {
	annotations database.AnnotationRepository
	digests     database.DigestRepository
	opts        Options
}

func NewAssembler(annotations database.AnnotationRepository, digests database.DigestRepository, opts Options) *Assembler {
	if opts.MaxItems <= 0 {
		opts.MaxItems = 20
	}
	if opts.WindowHours <= 0 {
		opts.WindowHours = 24
	}
	return &Assembler{annotations: annotations, digests: digests, opts: opts}
}

// Assemble builds, renders, and stores the digest for a date. Regenerating
// an existing draft replaces its content and item list. A day with no
// qualifying items still produces a digest so downstream consumers see an
// explicit empty edition rather than a gap.
func (a *Assembler) Assemble(ctx context.Context, date time.Time) (*database.Digest, error) {
	since := date.Add(-time.Duration(a.opts.WindowHours) * time.Hour)

	candidates, err := a.annotations.GetDigestCandidates(ctx, a.opts.MinScore, since)
	if err != nil {
		return nil, fmt.Errorf("digest: load candidates: %w", err)
	}

	selected := a.selectItems(candidates)
	sections := a.groupByCategory(selected)

	title := fmt.Sprintf("News Digest %s", date.Format("2006-01-02"))
	body := renderMarkdown(title, sections)

	annotationIDs := make([]string, 0, len(selected))
	for _, item := range selected {
		annotationIDs = append(annotationIDs, item.Annotation.ID)
	}

	digest, err := a.digests.UpsertDigest(ctx, date, title, body, annotationIDs)
	if err != nil {
		return nil, fmt.Errorf("digest: store digest: %w", err)
	}

	slog.Info("Digest assembled", "date", date.Format("2006-01-02"), "items", len(selected))
	return digest, nil
}

// selectItems applies the ordering and size cap. The repository already
// orders by total score, recency, and URL; the sort here keeps the result
// deterministic regardless of the storage backend.
func (a *Assembler) selectItems(candidates []database.DigestCandidate) []database.DigestCandidate {
	sorted := make([]database.DigestCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalScore != sorted[j].TotalScore {
			return sorted[i].TotalScore > sorted[j].TotalScore
		}
		if !sorted[i].PublishedAt.Equal(sorted[j].PublishedAt) {
			return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
		}
		return sorted[i].CanonicalURL < sorted[j].CanonicalURL
	})
	if len(sorted) > a.opts.MaxItems {
		sorted = sorted[:a.opts.MaxItems]
	}
	return sorted
}

// groupByCategory orders sections by the configured priority list, then by
// first appearance for categories outside it. Items keep their selection
// order within a section. An item without a source category hint is routed
// by keyword match over its title and annotation keywords.
func (a *Assembler) groupByCategory(items []database.DigestCandidate) []Section {
	byCategory := make(map[string][]database.DigestCandidate)
	var order []string
	for _, item := range items {
		category := item.ItemCategory
		if category == "" {
			category = classifyByKeywords(item.ItemTitle, item.Keywords)
		}
		if _, seen := byCategory[category]; !seen {
			order = append(order, category)
		}
		byCategory[category] = append(byCategory[category], item)
	}

	var sections []Section
	for _, category := range a.opts.CategoryPriority {
		if items, ok := byCategory[category]; ok {
			sections = append(sections, Section{Category: category, Items: items})
			delete(byCategory, category)
		}
	}
	for _, category := range order {
		if items, ok := byCategory[category]; ok {
			sections = append(sections, Section{Category: category, Items: items})
			delete(byCategory, category)
		}
	}
	return sections
}
