package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	SourcesFile  string
	Port         string
	WorkerCount  int
	APIAccessKey string
	RedisAddr    string

	// LLM configuration
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout int

	// Search collector configuration
	SearchAPIKey string

	// Pipeline configuration
	BatchSize            int
	AnnotateConcurrency  int
	StageRetries         int
	SummaryMaxLength     int
	DedupSimilarity      float64
	DedupWindowHours     int
	DigestMinScore       int
	DigestMaxItems       int
	DigestWindowHours    int
	CategoryPriority     []string
	CollectIntervalHours int
	DigestHour           int

	// Delivery configuration
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	EmailTo      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
