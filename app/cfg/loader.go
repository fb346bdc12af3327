package cfg

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"newsbrief" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"newsbrief" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"newsbrief" description:"Database name"`

	// Application configuration
	SourcesFile  string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"YAML file with source definitions"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for digest caching (optional)"`

	// LLM configuration
	LLMAPIKey  string `long:"llm-api-key" env:"LLM_API_KEY" description:"API key for the model provider (required)"`
	LLMBaseURL string `long:"llm-base-url" env:"LLM_BASE_URL" default:"https://api.openai.com/v1" description:"Base URL of the OpenAI-compatible API"`
	LLMModel   string `long:"llm-model" env:"LLM_MODEL" default:"gpt-4o" description:"Model name for annotation calls"`
	LLMTimeout int    `long:"llm-timeout" env:"LLM_TIMEOUT" default:"60" description:"Per-call model timeout in seconds"`

	// Search collector configuration
	SearchAPIKey string `long:"search-api-key" env:"SEARCH_API_KEY" description:"API key for the news search provider (optional)"`

	// Pipeline configuration
	BatchSize            int     `long:"batch-size" env:"BATCH_SIZE" default:"20" description:"Annotation batch size"`
	AnnotateConcurrency  int     `long:"annotate-concurrency" env:"ANNOTATE_CONCURRENCY" default:"20" description:"Concurrent model calls within a batch"`
	StageRetries         int     `long:"stage-retries" env:"STAGE_RETRIES" default:"2" description:"Retries for a malformed model response per stage"`
	SummaryMaxLength     int     `long:"summary-max-length" env:"SUMMARY_MAX_LENGTH" default:"100" description:"Hard cap on summary length in characters"`
	DedupSimilarity      float64 `long:"dedup-similarity" env:"DEDUP_SIMILARITY" default:"0.85" description:"Title similarity threshold for duplicate detection"`
	DedupWindowHours     int     `long:"dedup-window" env:"DEDUP_WINDOW_HOURS" default:"24" description:"Trailing window for title comparison in hours"`
	DigestMinScore       int     `long:"digest-min-score" env:"DIGEST_MIN_SCORE" default:"15" description:"Minimum total score for digest inclusion"`
	DigestMaxItems       int     `long:"digest-max-items" env:"DIGEST_MAX_ITEMS" default:"20" description:"Maximum items per digest"`
	DigestWindowHours    int     `long:"digest-window" env:"DIGEST_WINDOW_HOURS" default:"24" description:"Publication window for digest candidates in hours"`
	CategoryPriority     string  `long:"category-priority" env:"CATEGORY_PRIORITY" default:"ai,investment,web3" description:"Comma-separated category display order"`
	CollectIntervalHours int     `long:"collect-interval" env:"COLLECT_INTERVAL_HOURS" default:"2" description:"Hours between source collection runs"`
	DigestHour           int     `long:"digest-hour" env:"DIGEST_HOUR" default:"6" description:"Hour of day (local) for digest assembly"`

	// Delivery configuration
	SMTPHost     string `long:"smtp-host" env:"SMTP_HOST" description:"SMTP host for digest delivery (optional)"`
	SMTPPort     string `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP port"`
	SMTPUser     string `long:"smtp-user" env:"SMTP_USER" description:"SMTP user"`
	SMTPPassword string `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
	EmailFrom    string `long:"email-from" env:"EMAIL_FROM" description:"Sender address for digest delivery"`
	EmailTo      string `long:"email-to" env:"EMAIL_TO" description:"Recipient address for digest delivery"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"newsbrief/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:               raw.DBHost,
		DBPort:               raw.DBPort,
		DBUser:               raw.DBUser,
		DBPassword:           raw.DBPassword,
		DBName:               raw.DBName,
		SourcesFile:          raw.SourcesFile,
		Port:                 raw.Port,
		WorkerCount:          raw.WorkerCount,
		APIAccessKey:         raw.APIAccessKey,
		RedisAddr:            raw.RedisAddr,
		LLMAPIKey:            raw.LLMAPIKey,
		LLMBaseURL:           raw.LLMBaseURL,
		LLMModel:             raw.LLMModel,
		LLMTimeout:           raw.LLMTimeout,
		SearchAPIKey:         raw.SearchAPIKey,
		BatchSize:            raw.BatchSize,
		AnnotateConcurrency:  raw.AnnotateConcurrency,
		StageRetries:         raw.StageRetries,
		SummaryMaxLength:     raw.SummaryMaxLength,
		DedupSimilarity:      raw.DedupSimilarity,
		DedupWindowHours:     raw.DedupWindowHours,
		DigestMinScore:       raw.DigestMinScore,
		DigestMaxItems:       raw.DigestMaxItems,
		DigestWindowHours:    raw.DigestWindowHours,
		CategoryPriority:     splitList(raw.CategoryPriority),
		CollectIntervalHours: raw.CollectIntervalHours,
		DigestHour:           raw.DigestHour,
		SMTPHost:             raw.SMTPHost,
		SMTPPort:             raw.SMTPPort,
		SMTPUser:             raw.SMTPUser,
		SMTPPassword:         raw.SMTPPassword,
		EmailFrom:            raw.EmailFrom,
		EmailTo:              raw.EmailTo,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

// Validate checks settings the pipeline cannot run without. A failure here
// aborts startup before any stage touches the store.
func (c *Cfg) Validate() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("configuration: LLM_API_KEY is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("configuration: batch size must be positive, got %d", c.BatchSize)
	}
	if c.SummaryMaxLength < 10 {
		return fmt.Errorf("configuration: summary max length must be at least 10, got %d", c.SummaryMaxLength)
	}
	if c.DedupSimilarity <= 0 || c.DedupSimilarity > 1 {
		return fmt.Errorf("configuration: dedup similarity must be in (0,1], got %g", c.DedupSimilarity)
	}
	if c.DigestMaxItems <= 0 {
		return fmt.Errorf("configuration: digest max items must be positive, got %d", c.DigestMaxItems)
	}
	if c.DigestHour < 0 || c.DigestHour > 23 {
		return fmt.Errorf("configuration: digest hour must be in [0,23], got %d", c.DigestHour)
	}
	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SetForTesting installs a config for tests that exercise cfg.Get() paths.
func SetForTesting(c *Cfg) {
	globalCfg = c
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
