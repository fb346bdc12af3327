package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"newsbrief/app/config"
	"newsbrief/app/database"
)

type SyncSourcesTask struct {
	Task
	Source     config.Source
	sourceRepo database.SourceRepository
}

func NewSyncSourcesTask(source config.Source, sourceRepo database.SourceRepository) *SyncSourcesTask {
	return &SyncSourcesTask{
		Task:       NewTask(TaskTypeSyncSources, source.Name),
		Source:     source,
		sourceRepo: sourceRepo,
	}
}

func (t *SyncSourcesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, err := t.sourceRepo.UpsertSource(ctx,
		t.Source.Name,
		t.Source.Type,
		t.Source.URL,
		t.Source.Query,
		t.Source.Category,
		t.Source.IsEnabled())
	if err != nil {
		slog.Error("Task failed", "type", "SyncSources", "source", t.Source.Name, "error", err)
		return fmt.Errorf("failed to sync source to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncSources",
		"source", t.Source.Name,
		"duration", t.GetDuration())

	return nil
}
