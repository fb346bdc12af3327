package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"newsbrief/app/cache"
	"newsbrief/app/database"
	"newsbrief/app/tasks"
)

func NewHandler(sourceRepo database.SourceRepository, itemRepo database.ItemRepository,
	annotationRepo database.AnnotationRepository, digestRepo database.DigestRepository,
	digestCache *cache.Cache, factory *tasks.Factory, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		sourceRepo:     sourceRepo,
		itemRepo:       itemRepo,
		annotationRepo: annotationRepo,
		digestRepo:     digestRepo,
		digestCache:    digestCache,
		factory:        factory,
		scheduler:      scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if counts, err := h.itemRepo.GetItemCounts(c.Request.Context()); err == nil {
		health["pending_items"] = counts.Pending
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if counts, err := h.itemRepo.GetItemCounts(ctx); err == nil {
		stats["items"] = map[string]interface{}{
			"pending":   counts.Pending,
			"processed": counts.Processed,
			"discarded": counts.Discarded,
		}
	}

	if annotationCount, err := h.annotationRepo.GetAnnotationCount(ctx); err == nil {
		stats["annotations"] = annotationCount
	}

	if digestCount, err := h.digestRepo.GetDigestCount(ctx); err == nil {
		stats["digests"] = digestCount
	}

	if sources, err := h.sourceRepo.GetEnabledSources(ctx); err == nil {
		stats["enabled_sources"] = len(sources)
	}

	c.JSON(http.StatusOK, stats)
}

// GetDigest serves the digest for a date as markdown. Date defaults to today.
// Bodies are cached in Redis when a cache is configured.
func (h *Handler) GetDigest(c *gin.Context) {
	date, ok := h.parseDate(c)
	if !ok {
		return
	}
	dateKey := date.Format("2006-01-02")
	ctx := c.Request.Context()

	if body, found, err := h.digestCache.GetDigest(ctx, dateKey); err != nil {
		slog.Warn("Digest cache read failed", "date", dateKey, "error", err)
	} else if found {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.Header("X-Digest-Date", dateKey)
		c.Header("X-Cache", "HIT")
		c.String(http.StatusOK, body)
		return
	}

	digest, err := h.digestRepo.GetDigestByDate(ctx, date)
	if err != nil {
		slog.Error("Database error", "operation", "get_digest", "date", dateKey, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if digest == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.digestCache.SetDigest(ctx, dateKey, digest.Body, 5*time.Minute); err != nil {
		slog.Warn("Digest cache write failed", "date", dateKey, "error", err)
	}

	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.Header("X-Digest-Date", digest.DigestDate.Format("2006-01-02"))
	c.Header("X-Digest-Status", digest.Status)

	c.String(http.StatusOK, digest.Body)
}

func (h *Handler) APIGetDigestDetails(c *gin.Context) {
	date, ok := h.parseDate(c)
	if !ok {
		return
	}

	digest, err := h.digestRepo.GetDigestByDate(c.Request.Context(), date)
	if err != nil {
		slog.Error("Database error", "operation", "get_digest", "date", date.Format("2006-01-02"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if digest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Digest not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           digest.ID,
		"date":         digest.DigestDate.Format("2006-01-02"),
		"title":        digest.Title,
		"body":         digest.Body,
		"status":       digest.Status,
		"created_at":   digest.CreatedAt,
		"published_at": digest.PublishedAt,
	})
}

// APITriggerCollect enqueues collection for every enabled source followed by
// an annotation pass.
func (h *Handler) APITriggerCollect(c *gin.Context) {
	sources, err := h.sourceRepo.GetEnabledSources(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	enqueued := make([]gin.H, 0, len(sources)+1)
	for _, source := range sources {
		task := h.factory.CollectSource(source)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing collect task", "source", source.Name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue collect task", "details": err.Error()})
			return
		}
		enqueued = append(enqueued, gin.H{"id": task.ID, "type": task.Type, "source": source.Name})
	}

	annotateTask := h.factory.AnnotateItems()
	if err := h.scheduler.EnqueueTask(annotateTask); err != nil {
		slog.Error("Error enqueueing annotate task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue annotate task", "details": err.Error()})
		return
	}
	enqueued = append(enqueued, gin.H{"id": annotateTask.ID, "type": annotateTask.Type})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Collection tasks enqueued successfully",
		"tasks":   enqueued,
	})
}

// APITriggerAnnotate enqueues an annotation pass over pending items.
func (h *Handler) APITriggerAnnotate(c *gin.Context) {
	task := h.factory.AnnotateItems()
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing annotate task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue annotate task", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Annotation task enqueued successfully",
		"tasks":   []gin.H{{"id": task.ID, "type": task.Type}},
	})
}

// APIGenerateDigest enqueues digest assembly for a date (today by default).
// Regeneration replaces an existing draft.
func (h *Handler) APIGenerateDigest(c *gin.Context) {
	date, ok := h.parseDate(c)
	if !ok {
		return
	}

	task := h.factory.AssembleDigest(date)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing digest task", "date", date.Format("2006-01-02"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue digest task", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Digest task enqueued successfully",
		"tasks":   []gin.H{{"id": task.ID, "type": task.Type}},
	})
}

// APIRunPipeline enqueues a full collect-annotate-assemble run.
func (h *Handler) APIRunPipeline(c *gin.Context) {
	task := h.factory.RunPipeline(time.Now().UTC())
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing pipeline task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue pipeline task", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Pipeline run enqueued successfully",
		"tasks":   []gin.H{{"id": task.ID, "type": task.Type}},
	})
}

func (h *Handler) APIPublishDigest(c *gin.Context) {
	date, ok := h.parseDate(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	digest, err := h.digestRepo.GetDigestByDate(ctx, date)
	if err != nil {
		slog.Error("Database error", "operation", "get_digest", "date", date.Format("2006-01-02"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if digest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Digest not found"})
		return
	}
	if digest.Status == database.DigestStatusPublished {
		c.JSON(http.StatusConflict, gin.H{"error": "Digest already published"})
		return
	}

	if err := h.digestRepo.PublishDigest(ctx, date); err != nil {
		slog.Error("Database error", "operation", "publish_digest", "date", date.Format("2006-01-02"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish digest"})
		return
	}

	if err := h.digestCache.InvalidateDigest(ctx, date.Format("2006-01-02")); err != nil {
		slog.Warn("Digest cache invalidation failed", "date", date.Format("2006-01-02"), "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Digest published successfully",
		"date":    date.Format("2006-01-02"),
	})
}

// APISetApproval flips the editorial approval flag on an annotation.
func (h *Handler) APISetApproval(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing annotation id parameter"})
		return
	}

	var body struct {
		Approved *bool `json:"approved"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Approved == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must contain an 'approved' boolean"})
		return
	}

	if err := h.annotationRepo.SetApproval(c.Request.Context(), id, *body.Approved); err != nil {
		slog.Error("Database error", "operation", "set_approval", "annotation", id, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Annotation not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"approved": *body.Approved,
	})
}

// parseDate reads the date path or query parameter, defaulting to today.
// It writes the error response itself when the value is malformed.
func (h *Handler) parseDate(c *gin.Context) (time.Time, bool) {
	raw := c.Param("date")
	if raw == "" {
		raw = c.Query("date")
	}
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}
