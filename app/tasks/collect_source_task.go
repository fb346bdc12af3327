package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"newsbrief/app/collector"
	"newsbrief/app/config"
	"newsbrief/app/database"
	"newsbrief/app/dedup"
)

// Bodies shorter than this are treated as feed stubs and replaced with
// extracted page content when extraction succeeds.
const stubBodyLength = 200

type CollectSourceTask struct {
	Task
	Source       database.Source
	httpClient   *http.Client
	deduper      *dedup.Deduplicator
	extractor    *collector.ContentExtractor
	sourceRepo   database.SourceRepository
	itemRepo     database.ItemRepository
	locks        *StageLocks
	userAgent    string
	searchAPIKey string
	windowHours  int
}

func NewCollectSourceTask(source database.Source, httpClient *http.Client, deduper *dedup.Deduplicator,
	extractor *collector.ContentExtractor, sourceRepo database.SourceRepository, itemRepo database.ItemRepository,
	locks *StageLocks, userAgent, searchAPIKey string, windowHours int) *CollectSourceTask {
	return &CollectSourceTask{
		Task:         NewTask(TaskTypeCollectSource, source.Name),
		Source:       source,
		httpClient:   httpClient,
		deduper:      deduper,
		extractor:    extractor,
		sourceRepo:   sourceRepo,
		itemRepo:     itemRepo,
		locks:        locks,
		userAgent:    userAgent,
		searchAPIKey: searchAPIKey,
		windowHours:  windowHours,
	}
}

func (t *CollectSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.locks.TryAcquire(TaskTypeCollectSource, t.Source.Name) {
		slog.Debug("Collection already running for source, skipping", "source", t.Source.Name)
		return nil
	}
	defer t.locks.Release(TaskTypeCollectSource, t.Source.Name)

	coll, err := collector.New(config.Source{
		Name:     t.Source.Name,
		Type:     t.Source.Type,
		URL:      t.Source.URL,
		Query:    t.Source.Query,
		Category: t.Source.Category,
	}, t.httpClient, t.userAgent, t.searchAPIKey)
	if err != nil {
		return fmt.Errorf("failed to build collector: %w", err)
	}

	items, err := coll.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect items: %w", err)
	}

	newCount := 0
	duplicateCount := 0
	knownCount := 0

	if len(items) > 0 {
		corpus, err := t.loadCorpus(ctx)
		if err != nil {
			return err
		}

		decisions := t.deduper.Run(items, corpus)

		newCount, duplicateCount, knownCount, err = t.storeDecisions(ctx, decisions)
		if err != nil {
			return err
		}
	}

	if err := t.sourceRepo.MarkFetched(ctx, t.Source.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark source fetched: %w", err)
	}

	slog.Info("Task completed",
		"type", "CollectSource",
		"source", t.Source.Name,
		"duration", t.GetDuration(),
		"total", len(items),
		"new", newCount,
		"duplicates", duplicateCount,
		"known", knownCount)

	return nil
}

func (t *CollectSourceTask) loadCorpus(ctx context.Context) (dedup.Corpus, error) {
	urls, err := t.itemRepo.GetActiveURLs(ctx)
	if err != nil {
		return dedup.Corpus{}, fmt.Errorf("failed to load known URLs: %w", err)
	}

	since := time.Now().UTC().Add(-time.Duration(t.windowHours) * time.Hour)
	recent, err := t.itemRepo.GetRecentTitles(ctx, since)
	if err != nil {
		return dedup.Corpus{}, fmt.Errorf("failed to load recent titles: %w", err)
	}

	titles := make([]dedup.KnownTitle, 0, len(recent))
	for _, r := range recent {
		titles = append(titles, dedup.KnownTitle{ID: r.ID, Title: r.Title})
	}

	return dedup.Corpus{URLs: urls, Titles: titles}, nil
}

// storeDecisions persists a deduplicated batch in order, so a duplicate of a
// batch-local item always resolves to an already-inserted ID. A URL that is
// already stored is skipped without writing anything, so re-fetching an
// unchanged source leaves the store as it was.
func (t *CollectSourceTask) storeDecisions(ctx context.Context, decisions []dedup.Decision) (newCount, duplicateCount, knownCount int, err error) {
	batchIDs := make(map[string]string)

	for _, decision := range decisions {
		if decision.AlreadyStored {
			knownCount++
			continue
		}

		item := t.toRawItem(decision)

		if decision.Duplicate {
			duplicateCount++

			duplicateOf := decision.DuplicateOfID
			if duplicateOf == "" && decision.DuplicateOfURL != "" {
				duplicateOf = batchIDs[decision.DuplicateOfURL]
			}
			item.Status = database.StatusDiscarded
			item.DiscardReason = decision.Reason
			if duplicateOf != "" {
				item.DuplicateOf = &duplicateOf
			}

			if err := t.itemRepo.InsertDiscarded(ctx, item); err != nil {
				return newCount, duplicateCount, knownCount, fmt.Errorf("failed to store discarded item: %w", err)
			}
			continue
		}

		t.enrichBody(ctx, &item)

		id, inserted, err := t.itemRepo.InsertItem(ctx, item)
		if err != nil {
			return newCount, duplicateCount, knownCount, fmt.Errorf("failed to store item: %w", err)
		}
		if !inserted {
			// Lost the race to a concurrent task holding the same URL.
			duplicateCount++
			continue
		}

		newCount++
		if decision.CanonicalURL != "" {
			batchIDs[decision.CanonicalURL] = id
		}
	}

	return newCount, duplicateCount, knownCount, nil
}

func (t *CollectSourceTask) toRawItem(decision dedup.Decision) database.RawItem {
	publishedAt := decision.Item.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now().UTC()
	}

	return database.RawItem{
		SourceID:     t.Source.ID,
		CanonicalURL: decision.CanonicalURL,
		Title:        decision.Item.Title,
		Body:         decision.Item.Body,
		Author:       decision.Item.Author,
		PublishedAt:  publishedAt,
		Category:     t.Source.Category,
		Status:       database.StatusPending,
		FetchedAt:    time.Now().UTC(),
	}
}

// enrichBody replaces a stub body with extracted page content. Extraction is
// best effort; on failure the stub is kept.
func (t *CollectSourceTask) enrichBody(ctx context.Context, item *database.RawItem) {
	if t.extractor == nil || len(item.Body) >= stubBodyLength {
		return
	}

	extracted, err := t.extractor.Run(ctx, "https://"+item.CanonicalURL)
	if err != nil {
		slog.Debug("Content extraction failed, keeping feed body", "source", t.Source.Name, "url", item.CanonicalURL, "error", err)
		return
	}
	item.Body = extracted
}
