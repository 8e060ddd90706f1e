// internal/config/types.go

// Package config provides the YAML configuration for a ProductScrapexter run:
// the category listings to crawl, how product links are recognised, extraction
// thresholds, browser timing, export paths and the optional document store.
package config

import (
	"time"
)

// Config represents the main configuration structure for a scraping run.
type Config struct {
	// Name identifies this configuration
	Name string `yaml:"name"`

	// BaseURL is prefixed to relative product links
	BaseURL string `yaml:"base_url"`

	// Category is stamped on every exported record
	Category string `yaml:"category"`

	// Categories are crawled in order; each name becomes the record subcategory
	Categories []CategoryConfig `yaml:"categories"`

	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Browser    BrowserConfig    `yaml:"browser"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Output     OutputConfig     `yaml:"output"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Log        LogConfig        `yaml:"log"`
}

// CategoryConfig is one listing page.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DiscoveryConfig controls which listing anchors count as product pages.
type DiscoveryConfig struct {
	ProductPathPattern string `yaml:"product_path_pattern"`
	PageSuffix         string `yaml:"page_suffix"`
	LoadMoreText       string `yaml:"load_more_text"`
	MaxLoadMore        int    `yaml:"max_load_more"`
}

// ExtractionConfig holds variant acceptance and normalization settings.
type ExtractionConfig struct {
	MinPrice           float64  `yaml:"min_price"`
	CurrencySymbol     string   `yaml:"currency_symbol"`
	MaterialVocabulary []string `yaml:"material_vocabulary"`
}

// BrowserConfig holds headless browser settings.
type BrowserConfig struct {
	Headless        bool          `yaml:"headless"`
	Timeout         time.Duration `yaml:"timeout"`
	WaitDelay       time.Duration `yaml:"wait_delay"`
	DisclosureDelay time.Duration `yaml:"disclosure_delay"`
	UserAgent       string        `yaml:"user_agent,omitempty"`
	UserDataDir     string        `yaml:"user_data_dir,omitempty"`
	DisableImages   bool          `yaml:"disable_images"`
	ViewportWidth   int           `yaml:"viewport_width"`
	ViewportHeight  int           `yaml:"viewport_height"`
}

// RateLimitConfig spaces out page navigations. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// OutputConfig lists export destinations. Excel and SQLite are optional.
type OutputConfig struct {
	AllCSV       string `yaml:"all_csv"`
	UniqueCSV    string `yaml:"unique_csv"`
	Excel        string `yaml:"excel,omitempty"`
	SQLite       string `yaml:"sqlite,omitempty"`
	SQLiteParams string `yaml:"sqlite_params,omitempty"` // DSN query, e.g. "?_busy_timeout=5000"
}

// MongoDBConfig configures document-store persistence. An empty URI disables it.
type MongoDBConfig struct {
	URI              string        `yaml:"uri"`
	Database         string        `yaml:"database"`
	CollectionAll    string        `yaml:"collection_all"`
	CollectionUnique string        `yaml:"collection_unique"`
	Timeout          time.Duration `yaml:"timeout"`
	Source           string        `yaml:"source"`
}

// Enabled reports whether documents should be uploaded.
func (m MongoDBConfig) Enabled() bool {
	return m.URI != ""
}

// MetricsConfig enables the /metrics and /healthz endpoint when ListenAddress is set.
type MetricsConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}
