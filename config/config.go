package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application-level configuration.
type Config struct {
	// Pipeline
	DefaultMode     string
	SearchAttempts  int           // attempts per backend search, fixed delay between
	RetryDelay      time.Duration // inter-attempt delay, no backoff growth
	PipelineTimeout time.Duration // whole plan+execute deadline

	// Ranking
	MaxResults   int     // final list cap
	RelaxPercent float64 // budget max relaxation, e.g. 0.20 = +20%
	AnchorCount  int     // no-budget: premium anchors from the top of the price sort
	MidCount     int     // no-budget: mid-range slice size

	// Enrichment
	EnrichConcurrency int

	// Evaluation
	TargetResultCount int
	TargetTime        time.Duration

	// Rate limiting
	RateLimit  int
	RateWindow time.Duration

	// Backends
	BaseURL           string // search target base URL, shared by all backends
	ChromeWSURL       string // remote CDP websocket for the browser backend
	BrowserAllowLocal bool   // allow launching a local headless Chrome
	StealthProxyURL   string // anti-bot proxy required by the stealth backend

	// Collaborators (intent parsing, review summarization)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Output sinks (empty disables)
	CSVFilePath string
	DatabaseURL string
}

// Load reads configuration from the environment (a local .env is honored
// when present) or falls back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DefaultMode:     getEnv("DEFAULT_MODE", "browser"),
		SearchAttempts:  getEnvInt("SEARCH_ATTEMPTS", 2),
		RetryDelay:      getEnvDuration("RETRY_DELAY_MS", 1500),
		PipelineTimeout: getEnvDuration("PIPELINE_TIMEOUT_MS", 120000),

		MaxResults:   getEnvInt("MAX_RESULTS", 10),
		RelaxPercent: getEnvFloat("BUDGET_RELAX_PERCENT", 0.20),
		AnchorCount:  getEnvInt("ANCHOR_COUNT", 3),
		MidCount:     getEnvInt("MID_RANGE_COUNT", 4),

		EnrichConcurrency: getEnvInt("ENRICH_CONCURRENCY", 3),

		TargetResultCount: getEnvInt("TARGET_RESULT_COUNT", 10),
		TargetTime:        getEnvDuration("TARGET_TIME_MS", 30000),

		RateLimit:  getEnvInt("RATE_LIMIT", 5),
		RateWindow: getEnvDuration("RATE_WINDOW_MS", 60000),

		BaseURL:           getEnv("AIRBNB_URL", "https://www.airbnb.com"),
		ChromeWSURL:       getEnv("CHROME_WS_URL", ""),
		BrowserAllowLocal: getEnvBool("BROWSER_ALLOW_LOCAL", true),
		StealthProxyURL:   getEnv("STEALTH_PROXY_URL", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		CSVFilePath: getEnv("CSV_FILE_PATH", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// getEnvDuration reads a millisecond env value into a time.Duration.
func getEnvDuration(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}
