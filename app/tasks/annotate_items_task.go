package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"newsbrief/app/annotate"
)

type AnnotateItemsTask struct {
	Task
	pipeline *annotate.Pipeline
	locks    *StageLocks
}

func NewAnnotateItemsTask(pipeline *annotate.Pipeline, locks *StageLocks) *AnnotateItemsTask {
	return &AnnotateItemsTask{
		Task:     NewTask(TaskTypeAnnotateItems, ""),
		pipeline: pipeline,
		locks:    locks,
	}
}

func (t *AnnotateItemsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.locks.TryAcquire(TaskTypeAnnotateItems, "") {
		slog.Debug("Annotation already running, skipping")
		return nil
	}
	defer t.locks.Release(TaskTypeAnnotateItems, "")

	report, err := t.pipeline.Run(ctx)
	if err != nil {
		slog.Error("Task failed", "type", "AnnotateItems", "error", err)
		return fmt.Errorf("failed to annotate items: %w", err)
	}

	slog.Info("Task completed",
		"type", "AnnotateItems",
		"duration", t.GetDuration(),
		"processed", report.Processed,
		"discarded", report.Discarded,
		"skipped", report.Skipped)

	return nil
}
