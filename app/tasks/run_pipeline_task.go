package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsbrief/app/database"
)

// RunPipelineTask executes a full run: collect every enabled source, then
// annotate, then assemble the digest for the run date. Each stage commits its
// own work, so cancellation between stages leaves completed stages intact and
// the next run picks up where this one stopped.
type RunPipelineTask struct {
	Task
	Date       time.Time
	factory    *Factory
	sourceRepo database.SourceRepository
	locks      *StageLocks
}

func NewRunPipelineTask(date time.Time, factory *Factory, sourceRepo database.SourceRepository, locks *StageLocks) *RunPipelineTask {
	return &RunPipelineTask{
		Task:       NewTask(TaskTypeRunPipeline, date.Format("2006-01-02")),
		Date:       date,
		factory:    factory,
		sourceRepo: sourceRepo,
		locks:      locks,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.locks.TryAcquire(TaskTypeRunPipeline, "") {
		slog.Debug("Pipeline run already in progress, skipping")
		return nil
	}
	defer t.locks.Release(TaskTypeRunPipeline, "")

	sources, err := t.sourceRepo.GetEnabledSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled sources: %w", err)
	}

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		task := t.factory.CollectSource(source)
		task.Start()
		if err := task.Execute(ctx); err != nil {
			// One unreachable source does not abort the run.
			slog.Warn("Source collection failed, continuing", "source", source.Name, "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	annotateTask := t.factory.AnnotateItems()
	annotateTask.Start()
	if err := annotateTask.Execute(ctx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	assembleTask := t.factory.AssembleDigest(t.Date)
	assembleTask.Start()
	if err := assembleTask.Execute(ctx); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "RunPipeline",
		"date", t.Scope,
		"duration", t.GetDuration(),
		"sources", len(sources))

	return nil
}
