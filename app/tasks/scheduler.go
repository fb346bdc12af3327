package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsbrief/app/cfg"
	"newsbrief/app/config"
	"newsbrief/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	factory         *Factory
	sourceRepo      database.SourceRepository
	sources         []config.Source
	collectInterval time.Duration
	digestHour      int
	workerCount     int
	lastCollect     time.Time
	lastDigestDate  string
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

func NewScheduler(factory *Factory, sourceRepo database.SourceRepository, sources []config.Source) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		factory:         factory,
		sourceRepo:      sourceRepo,
		sources:         sources,
		collectInterval: time.Duration(cfg.CollectIntervalHours) * time.Hour,
		digestHour:      cfg.DigestHour,
		workerCount:     cfg.WorkerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case now := <-ticker.C:
				s.enqueueDueTasks(now.UTC())
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	if len(s.sources) == 0 {
		slog.Debug("No source definitions found")
		return
	}

	slog.Debug("Syncing source definitions", "count", len(s.sources))

	for _, source := range s.sources {
		syncTask := NewSyncSourcesTask(source, s.sourceRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourcesTask", "source", source.Name, "error", err)
		}
	}
}

// enqueueDueTasks runs collection every collectInterval and digest assembly
// once per day after digestHour. The minute ticker makes both checks cheap.
func (s *Scheduler) enqueueDueTasks(now time.Time) {
	if now.Sub(s.lastCollect) >= s.collectInterval {
		s.lastCollect = now
		s.enqueueCollectTasks()
	}

	today := now.Format("2006-01-02")
	if now.Hour() >= s.digestHour && s.lastDigestDate != today {
		s.lastDigestDate = today
		task := s.factory.AssembleDigest(now)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue AssembleDigestTask", "date", today, "error", err)
		}
	}
}

func (s *Scheduler) enqueueCollectTasks() {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	enabled, err := s.sourceRepo.GetEnabledSources(ctx)
	if err != nil {
		slog.Warn("Failed to load enabled sources for scheduling", "error", err)
		return
	}
	if len(enabled) == 0 {
		slog.Debug("No enabled sources found")
		return
	}

	slog.Debug("Scheduling collection", "count", len(enabled))

	for _, source := range enabled {
		task := s.factory.CollectSource(source)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue CollectSourceTask", "source", source.Name, "error", err)
		}
	}

	annotateTask := s.factory.AnnotateItems()
	if err := s.EnqueueTask(annotateTask); err != nil {
		slog.Warn("Failed to enqueue AnnotateItemsTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 15*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "scope", task.GetScope(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
