package tasks

import (
	"net/http"
	"time"

	"newsbrief/app/annotate"
	"newsbrief/app/cache"
	"newsbrief/app/cfg"
	"newsbrief/app/collector"
	"newsbrief/app/database"
	"newsbrief/app/dedup"
	"newsbrief/app/digest"
	"newsbrief/app/notify"
)

// Factory builds tasks with their shared dependencies wired in. The
// scheduler and the API layer both create tasks through it.
type Factory struct {
	httpClient   *http.Client
	deduper      *dedup.Deduplicator
	extractor    *collector.ContentExtractor
	pipeline     *annotate.Pipeline
	assembler    *digest.Assembler
	sender       *notify.EmailSender
	digestCache  *cache.Cache
	sourceRepo   database.SourceRepository
	itemRepo     database.ItemRepository
	locks        *StageLocks
	userAgent    string
	searchAPIKey string
	windowHours  int
}

func NewFactory(httpClient *http.Client, deduper *dedup.Deduplicator, extractor *collector.ContentExtractor,
	pipeline *annotate.Pipeline, assembler *digest.Assembler, sender *notify.EmailSender,
	digestCache *cache.Cache, sourceRepo database.SourceRepository, itemRepo database.ItemRepository,
	locks *StageLocks) *Factory {
	c := cfg.Get()

	return &Factory{
		httpClient:   httpClient,
		deduper:      deduper,
		extractor:    extractor,
		pipeline:     pipeline,
		assembler:    assembler,
		sender:       sender,
		digestCache:  digestCache,
		sourceRepo:   sourceRepo,
		itemRepo:     itemRepo,
		locks:        locks,
		userAgent:    c.UserAgent,
		searchAPIKey: c.SearchAPIKey,
		windowHours:  c.DedupWindowHours,
	}
}

func (f *Factory) CollectSource(source database.Source) *CollectSourceTask {
	return NewCollectSourceTask(source, f.httpClient, f.deduper, f.extractor,
		f.sourceRepo, f.itemRepo, f.locks, f.userAgent, f.searchAPIKey, f.windowHours)
}

func (f *Factory) AnnotateItems() *AnnotateItemsTask {
	return NewAnnotateItemsTask(f.pipeline, f.locks)
}

func (f *Factory) AssembleDigest(date time.Time) *AssembleDigestTask {
	return NewAssembleDigestTask(date, f.assembler, f.sender, f.digestCache, f.locks)
}

func (f *Factory) RunPipeline(date time.Time) *RunPipelineTask {
	return NewRunPipelineTask(date, f, f.sourceRepo, f.locks)
}
