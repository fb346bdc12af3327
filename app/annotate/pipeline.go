package annotate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsbrief/app/database"
	"newsbrief/app/llm"
)

// Caller is the slice of the LLM client the pipeline needs.
type Caller interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Options struct {
	BatchSize        int
	Concurrency      int
	StageRetries     int // extra attempts after a malformed response
	SummaryMaxLength int
}

// Report aggregates the outcome of one pipeline run.
type Report struct {
	Processed int // annotated and marked processed
	Discarded int // filtered out, by rule or by the model
	Skipped   int // left pending after transient failures
}

// Pipeline runs pending items through the annotation stages: rule filter,
// relevance triage, summary, keywords, scoring. An item either comes out
// processed with a stored annotation, discarded with a reason, or stays
// pending for the next run.
type Pipeline struct {
	caller      Caller
	items       database.ItemRepository
	annotations database.AnnotationRepository
	filter      *RuleFilter
	opts        Options
}

func NewPipeline(caller Caller, items database.ItemRepository, annotations database.AnnotationRepository, opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.SummaryMaxLength <= 0 {
		opts.SummaryMaxLength = 100
	}
	return &Pipeline{
		caller:      caller,
		items:       items,
		annotations: annotations,
		filter:      NewRuleFilter(),
		opts:        opts,
	}
}

// Run drains the pending queue in batches until no batch makes progress.
// Items skipped over transient failures stay pending and would otherwise be
// refetched forever, so a batch that changes nothing ends the run.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	var total Report
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		batch, err := p.items.GetPendingItems(ctx, p.opts.BatchSize)
		if err != nil {
			return total, fmt.Errorf("annotate: load pending items: %w", err)
		}
		if len(batch) == 0 {
			return total, nil
		}

		report := p.runBatch(ctx, batch)
		total.Processed += report.Processed
		total.Discarded += report.Discarded
		total.Skipped += report.Skipped

		if report.Processed == 0 && report.Discarded == 0 {
			return total, nil
		}
	}
}

func (p *Pipeline) runBatch(ctx context.Context, batch []database.RawItem) Report {
	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
		sem    = make(chan struct{}, p.opts.Concurrency)
	)

	for _, item := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(item database.RawItem) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := p.processItem(ctx, item)
			mu.Lock()
			switch outcome {
			case outcomeProcessed:
				report.Processed++
			case outcomeDiscarded:
				report.Discarded++
			default:
				report.Skipped++
			}
			mu.Unlock()
		}(item)
	}
	wg.Wait()
	return report
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeProcessed
	outcomeDiscarded
)

func (p *Pipeline) processItem(ctx context.Context, item database.RawItem) outcome {
	log := slog.With("item_id", item.ID, "title", item.Title)

	verdict, reason := p.filter.Evaluate(item.Title)
	if verdict == VerdictDiscard {
		return p.discard(ctx, item, reason, log)
	}

	if verdict != VerdictKeep {
		relevant, err := p.relevanceStage(ctx, item)
		if err != nil {
			return p.stageFailure(ctx, item, "relevance", err, log)
		}
		if !relevant {
			return p.discard(ctx, item, "not relevant", log)
		}
	}

	summary, err := p.summaryStage(ctx, item)
	if err != nil {
		return p.stageFailure(ctx, item, "summary", err, log)
	}

	keywords, err := p.keywordsStage(ctx, item)
	if err != nil {
		return p.stageFailure(ctx, item, "keywords", err, log)
	}

	relevance, quality, timeliness, err := p.scoreStage(ctx, item)
	if err != nil {
		return p.stageFailure(ctx, item, "score", err, log)
	}

	annotation := database.Annotation{
		ItemID:          item.ID,
		Summary:         summary,
		Keywords:        keywords,
		RelevanceScore:  relevance,
		QualityScore:    quality,
		TimelinessScore: timeliness,
		TotalScore:      relevance + quality + timeliness,
		ProcessedAt:     time.Now().UTC(),
	}
	if _, err := p.annotations.InsertAnnotation(ctx, annotation); err != nil {
		log.Error("Failed to store annotation", "error", err)
		return outcomeSkipped
	}
	if err := p.items.MarkProcessed(ctx, item.ID); err != nil {
		log.Error("Failed to mark item processed", "error", err)
		return outcomeSkipped
	}
	log.Debug("Item annotated", "total_score", annotation.TotalScore)
	return outcomeProcessed
}

// stageFailure maps a stage error onto the item's fate: malformed model
// output (already retried) discards the item, anything else leaves it
// pending for the next run.
func (p *Pipeline) stageFailure(ctx context.Context, item database.RawItem, stage string, err error, log *slog.Logger) outcome {
	if llm.IsMalformed(err) {
		log.Warn("Discarding item after malformed model output", "stage", stage, "error", err)
		return p.discard(ctx, item, fmt.Sprintf("malformed %s response", stage), log)
	}
	log.Warn("Stage failed, item stays pending", "stage", stage, "error", err)
	return outcomeSkipped
}

func (p *Pipeline) discard(ctx context.Context, item database.RawItem, reason string, log *slog.Logger) outcome {
	if err := p.items.MarkDiscarded(ctx, item.ID, reason, nil); err != nil {
		log.Error("Failed to mark item discarded", "error", err)
		return outcomeSkipped
	}
	log.Debug("Item discarded", "reason", reason)
	return outcomeDiscarded
}

func (p *Pipeline) relevanceStage(ctx context.Context, item database.RawItem) (bool, error) {
	var relevant bool
	err := p.callStage(ctx, systemPromptRelevance, relevancePrompt(item.Title, item.Body), func(raw string) error {
		var parseErr error
		relevant, parseErr = parseRelevance(raw)
		return parseErr
	})
	return relevant, err
}

func (p *Pipeline) summaryStage(ctx context.Context, item database.RawItem) (string, error) {
	var summary string
	err := p.callStage(ctx, systemPromptSummary, summaryPrompt(item.Title, item.Body), func(raw string) error {
		var parseErr error
		summary, parseErr = parseSummary(raw, p.opts.SummaryMaxLength)
		return parseErr
	})
	return summary, err
}

func (p *Pipeline) keywordsStage(ctx context.Context, item database.RawItem) ([]string, error) {
	var keywords []string
	err := p.callStage(ctx, systemPromptKeywords, keywordsPrompt(item.Title, item.Body), func(raw string) error {
		var parseErr error
		keywords, parseErr = parseKeywords(raw)
		return parseErr
	})
	return keywords, err
}

func (p *Pipeline) scoreStage(ctx context.Context, item database.RawItem) (relevance, quality, timeliness int, err error) {
	err = p.callStage(ctx, systemPromptScore, scorePrompt(item.Title, item.Body), func(raw string) error {
		var parseErr error
		relevance, quality, timeliness, parseErr = parseScores(raw)
		return parseErr
	})
	return relevance, quality, timeliness, err
}

// callStage sends one prompt and parses the response, retrying the whole
// exchange when the model returns something unparseable. Transport errors
// are not retried here; the client already did that.
func (p *Pipeline) callStage(ctx context.Context, systemPrompt, userPrompt string, parse func(raw string) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.opts.StageRetries; attempt++ {
		raw, err := p.caller.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			if llm.IsMalformed(err) {
				lastErr = err
				continue
			}
			return err
		}
		if err := parse(raw); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
