package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"newsbrief/app/annotate"
	"newsbrief/app/api"
	"newsbrief/app/cache"
	"newsbrief/app/cfg"
	"newsbrief/app/collector"
	"newsbrief/app/config"
	"newsbrief/app/database"
	"newsbrief/app/dedup"
	"newsbrief/app/digest"
	"newsbrief/app/llm"
	"newsbrief/app/notify"
	"newsbrief/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting newsbrief", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser, appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	sources, err := config.NewLoader(appCfg.SourcesFile).Load()
	if err != nil {
		slog.Error("Failed to load source definitions", "file", appCfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded source definitions", "file", appCfg.SourcesFile, "count", len(sources))

	sourceRepo := database.NewSourceRepo(db)
	itemRepo := database.NewItemRepo(db)
	annotationRepo := database.NewAnnotationRepo(db)
	digestRepo := database.NewDigestRepo(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	llmClient := llm.NewClient(llm.Config{
		APIKey:         appCfg.LLMAPIKey,
		BaseURL:        appCfg.LLMBaseURL,
		Model:          appCfg.LLMModel,
		TimeoutSeconds: appCfg.LLMTimeout,
	})

	pipeline := annotate.NewPipeline(llmClient, itemRepo, annotationRepo, annotate.Options{
		BatchSize:        appCfg.BatchSize,
		Concurrency:      appCfg.AnnotateConcurrency,
		StageRetries:     appCfg.StageRetries,
		SummaryMaxLength: appCfg.SummaryMaxLength,
	})

	assembler := digest.NewAssembler(annotationRepo, digestRepo, digest.Options{
		MinScore:         appCfg.DigestMinScore,
		MaxItems:         appCfg.DigestMaxItems,
		WindowHours:      appCfg.DigestWindowHours,
		CategoryPriority: appCfg.CategoryPriority,
	})

	sender := notify.NewEmailSender(emailConfig(appCfg))
	if sender.IsConfigured() {
		slog.Info("Digest email delivery enabled", "host", appCfg.SMTPHost)
	} else {
		slog.Info("Digest email delivery disabled (SMTP not configured)")
	}

	var digestCache *cache.Cache
	if appCfg.RedisAddr != "" {
		digestCache, err = cache.New(appCfg.RedisAddr)
		if err != nil {
			slog.Error("Failed to connect to Redis", "addr", appCfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer digestCache.Close()
		slog.Info("Digest caching enabled", "addr", appCfg.RedisAddr)
	} else {
		slog.Info("Digest caching disabled (REDIS_ADDR not set)")
	}

	deduper := dedup.NewDeduplicator(appCfg.DedupSimilarity)
	extractor := collector.NewContentExtractor(httpClient, appCfg.UserAgent)
	locks := tasks.NewStageLocks()

	factory := tasks.NewFactory(httpClient, deduper, extractor, pipeline, assembler, sender,
		digestCache, sourceRepo, itemRepo, locks)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "collect_interval_hours", appCfg.CollectIntervalHours, "digest_hour", appCfg.DigestHour)
	scheduler := tasks.NewScheduler(factory, sourceRepo, sources)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(sourceRepo, itemRepo, annotationRepo, digestRepo, digestCache, factory, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func emailConfig(appCfg *cfg.Cfg) notify.EmailConfig {
	port, err := strconv.Atoi(appCfg.SMTPPort)
	if err != nil {
		port = 587
	}

	var recipients []string
	for _, addr := range strings.Split(appCfg.EmailTo, ",") {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}

	return notify.EmailConfig{
		Host:     appCfg.SMTPHost,
		Port:     port,
		Username: appCfg.SMTPUser,
		Password: appCfg.SMTPPassword,
		From:     appCfg.EmailFrom,
		To:       recipients,
	}
}
