package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Feed sources
	FeedsConfigPath string
	WorkerURL       string // Cloudflare worker base for blocked feeds ("" = direct only)

	// Fetch settings
	MaxItemsPerFeed  int
	FeedFetchTimeout time.Duration
	FetchDelay       time.Duration // polite pause between feed fetches

	// Image resolution
	ArticleFetchTimeout time.Duration // per-page og:image lookup
	MaxArticleFetches   int           // per-run budget for og:image lookups

	// Balancing
	MinPerCategory    int // per-category ceiling after capping
	MinRequiredEach   int // per-category floor for validation
	MaxNewsItems      int // global cap
	MaxItemsPerSource int // per-source cap within a category
	FeaturedCount     int

	// Publish policy
	DataDir           string
	PublishIncomplete bool // first run with failed validation still publishes

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Defaults match the production site's tuning
		FeedsConfigPath:     "configs/feeds.yaml",
		MaxItemsPerFeed:     20,
		FeedFetchTimeout:    12 * time.Second,
		FetchDelay:          300 * time.Millisecond,
		ArticleFetchTimeout: 5 * time.Second,
		MaxArticleFetches:   8,
		MinPerCategory:      18,
		MinRequiredEach:     3,
		MaxNewsItems:        300,
		MaxItemsPerSource:   8,
		FeaturedCount:       10,
		DataDir:             "data",
		PublishIncomplete:   true,
	}

	cfg.WorkerURL = os.Getenv("WORKER_URL")
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.DataDir = getEnvOrDefault("DATA_DIR", cfg.DataDir)

	cfg.MaxItemsPerFeed = getEnvIntOrDefault("MAX_ITEMS_PER_FEED", cfg.MaxItemsPerFeed)

	// Zero is a valid setting here: it turns article-page fetches off.
	if v := os.Getenv("MAX_ARTICLE_FETCHES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.MaxArticleFetches = val
		}
	}
	cfg.MinPerCategory = getEnvIntOrDefault("MIN_PER_CATEGORY", cfg.MinPerCategory)
	cfg.MinRequiredEach = getEnvIntOrDefault("MIN_REQUIRED_EACH", cfg.MinRequiredEach)
	cfg.MaxNewsItems = getEnvIntOrDefault("MAX_NEWS_ITEMS", cfg.MaxNewsItems)
	cfg.MaxItemsPerSource = getEnvIntOrDefault("MAX_ITEMS_PER_SOURCE", cfg.MaxItemsPerSource)
	cfg.FeaturedCount = getEnvIntOrDefault("FEATURED_PRIORITY_COUNT", cfg.FeaturedCount)

	if v := os.Getenv("FEED_FETCH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FeedFetchTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("ARTICLE_FETCH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ArticleFetchTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("FETCH_DELAY_MS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.FetchDelay = time.Duration(val) * time.Millisecond
		}
	}

	if v := os.Getenv("PUBLISH_INCOMPLETE"); v != "" {
		cfg.PublishIncomplete = v == "true"
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.FeedsConfigPath == "" {
		return fmt.Errorf("FEEDS_CONFIG_PATH is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.MinRequiredEach > c.MinPerCategory {
		return fmt.Errorf("MIN_REQUIRED_EACH (%d) exceeds MIN_PER_CATEGORY (%d)",
			c.MinRequiredEach, c.MinPerCategory)
	}
	if c.MaxNewsItems <= 0 {
		return fmt.Errorf("MAX_NEWS_ITEMS must be positive")
	}
	return nil
}

// NewsFile is the path of the published dataset.
func (c *Config) NewsFile() string {
	return filepath.Join(c.DataDir, "news.json")
}

// ArchiveFile is the single-generation backup of the previous dataset.
func (c *Config) ArchiveFile() string {
	return filepath.Join(c.DataDir, "archive.json")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}
