package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsbrief/app/cache"
	"newsbrief/app/digest"
	"newsbrief/app/notify"
)

type AssembleDigestTask struct {
	Task
	Date        time.Time
	assembler   *digest.Assembler
	sender      *notify.EmailSender
	digestCache *cache.Cache
	locks       *StageLocks
}

func NewAssembleDigestTask(date time.Time, assembler *digest.Assembler, sender *notify.EmailSender,
	digestCache *cache.Cache, locks *StageLocks) *AssembleDigestTask {
	return &AssembleDigestTask{
		Task:        NewTask(TaskTypeAssembleDigest, date.Format("2006-01-02")),
		Date:        date,
		assembler:   assembler,
		sender:      sender,
		digestCache: digestCache,
		locks:       locks,
	}
}

func (t *AssembleDigestTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.locks.TryAcquire(TaskTypeAssembleDigest, t.Scope) {
		slog.Debug("Digest assembly already running, skipping", "date", t.Scope)
		return nil
	}
	defer t.locks.Release(TaskTypeAssembleDigest, t.Scope)

	doc, err := t.assembler.Assemble(ctx, t.Date)
	if err != nil {
		slog.Error("Task failed", "type", "AssembleDigest", "date", t.Scope, "error", err)
		return fmt.Errorf("failed to assemble digest: %w", err)
	}

	if err := t.digestCache.InvalidateDigest(ctx, t.Scope); err != nil {
		slog.Warn("Digest cache invalidation failed", "date", t.Scope, "error", err)
	}

	if t.sender != nil && t.sender.IsConfigured() {
		if err := t.sender.Send(doc.Title, doc.Body); err != nil {
			// Delivery failure does not invalidate the stored digest.
			slog.Error("Digest email delivery failed", "date", t.Scope, "error", err)
		}
	}

	slog.Info("Task completed",
		"type", "AssembleDigest",
		"date", t.Scope,
		"duration", t.GetDuration())

	return nil
}
