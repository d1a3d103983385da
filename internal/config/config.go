// Package config loads all runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Trending/search API settings (ExtractorT-style service)
	APIBaseURL string
	Location   string
	TweetLimit int // max tweets per trend

	// Gemini settings
	GeminiAPIKey string
	GeminiModel  string

	// Database settings
	DatabaseURL string

	// Political analysis thresholds.
	// MinRelevance suppresses single weak keyword hits; DeepAnalysisThreshold
	// gates the expensive entity-extraction call. Both are tunable on purpose:
	// the observed defaults (2 and 5) were chosen empirically.
	MinRelevance          int
	DeepAnalysisThreshold int

	// Trend balancing targets (empirical defaults, see configs/keywords.yaml)
	MaxSportsTrends    int
	MaxNonSportsTrends int

	// Cost guard ceilings
	MaxCostPerCallUSD float64
	MaxCallsPerMinute int
	MaxDailyCostUSD   float64
	CostPerToken      float64

	// Keyword lexicon / feeds config
	KeywordsConfigPath string
	FeedsConfigPath    string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	Concurrency    int // bounded in-flight trend processing

	// News mode settings
	NewsMaxAge        time.Duration
	ScrapeMaxArticles int
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		APIBaseURL:            "http://localhost:8000",
		Location:              "guatemala",
		TweetLimit:            15,
		GeminiModel:           "gemini-1.5-flash",
		MinRelevance:          2,
		DeepAnalysisThreshold: 5,
		MaxSportsTrends:       5,
		MaxNonSportsTrends:    10,
		MaxCostPerCallUSD:     0.01,
		MaxCallsPerMinute:     15,
		MaxDailyCostUSD:       1.0,
		CostPerToken:          0.000002, // gpt-4o-mini class pricing
		KeywordsConfigPath:    "configs/keywords.yaml",
		FeedsConfigPath:       "configs/feeds.yaml",
		RequestTimeout:        30 * time.Second,
		RetryAttempts:         3,
		Concurrency:           4,
		NewsMaxAge:            24 * time.Hour,
		ScrapeMaxArticles:     10,
	}

	// Load from environment
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.APIBaseURL = getEnvOrDefault("API_BASE_URL", cfg.APIBaseURL)
	cfg.Location = getEnvOrDefault("LOCATION", cfg.Location)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.KeywordsConfigPath = getEnvOrDefault("KEYWORDS_CONFIG_PATH", cfg.KeywordsConfigPath)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)

	cfg.TweetLimit = getEnvIntOrDefault("TWEET_LIMIT", cfg.TweetLimit)
	cfg.MinRelevance = getEnvIntOrDefault("MIN_RELEVANCE", cfg.MinRelevance)
	cfg.DeepAnalysisThreshold = getEnvIntOrDefault("DEEP_ANALYSIS_THRESHOLD", cfg.DeepAnalysisThreshold)
	cfg.MaxSportsTrends = getEnvIntOrDefault("MAX_SPORTS_TRENDS", cfg.MaxSportsTrends)
	cfg.MaxNonSportsTrends = getEnvIntOrDefault("MAX_NONSPORTS_TRENDS", cfg.MaxNonSportsTrends)
	cfg.MaxCallsPerMinute = getEnvIntOrDefault("MAX_CALLS_PER_MINUTE", cfg.MaxCallsPerMinute)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.ScrapeMaxArticles = getEnvIntOrDefault("SCRAPE_MAX_ARTICLES", cfg.ScrapeMaxArticles)

	if v := os.Getenv("MAX_COST_PER_CALL_USD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 {
			cfg.MaxCostPerCallUSD = val
		}
	}
	if v := os.Getenv("MAX_DAILY_COST_USD"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 {
			cfg.MaxDailyCostUSD = val
		}
	}
	if v := os.Getenv("COST_PER_TOKEN"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 {
			cfg.CostPerToken = val
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("NEWS_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.NewsMaxAge = d
		}
	}

	if v := os.Getenv("CONCURRENCY"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.Concurrency = val
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MinRelevance < 0 || c.MinRelevance > 10 {
		return fmt.Errorf("MIN_RELEVANCE must be in [0,10]")
	}
	if c.DeepAnalysisThreshold < 0 || c.DeepAnalysisThreshold > 10 {
		return fmt.Errorf("DEEP_ANALYSIS_THRESHOLD must be in [0,10]")
	}
	return nil
}
