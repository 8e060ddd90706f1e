// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Fixed tags stamped on exported records and stored documents.
const (
	DefaultCategory = "Luggage"
	DefaultSource   = "rimowa_scraper"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadFromFile loads configuration from a YAML file. A .env file next to it
// is loaded first so its variables are available to ${VAR} references.
func LoadFromFile(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration filename cannot be empty")
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	if err := LoadEnvFile(filepath.Join(filepath.Dir(filename), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return LoadFromBytes(data)
}

// LoadEnvFile loads variables from a dotenv file without overriding ones
// already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadFromBytes loads configuration from YAML bytes. Keys absent from the
// document keep their Default values.
func LoadFromBytes(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("configuration data cannot be empty")
	}

	expandedData := expandEnvironmentVariables(string(data))

	config := Default()
	if err := yaml.Unmarshal([]byte(expandedData), config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromReader loads configuration from an io.Reader
func LoadFromReader(reader io.Reader) (*Config, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read from reader: %w", err)
	}

	return LoadFromBytes(data)
}

// Template renders the default configuration as YAML, with the MongoDB URI
// taken from the environment.
func Template() ([]byte, error) {
	config := Default()
	config.MongoDB.URI = "${MONGODB_URI}"
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}
	return data, nil
}

// expandEnvironmentVariables replaces ${VAR} references. Bare $ is left alone
// so regular expressions survive expansion.
func expandEnvironmentVariables(content string) string {
	return envVarRe.ReplaceAllStringFunc(content, func(ref string) string {
		return os.Getenv(envVarRe.FindStringSubmatch(ref)[1])
	})
}

// Default returns the configuration for the Rimowa US luggage catalogue.
func Default() *Config {
	return &Config{
		Name:     "rimowa",
		BaseURL:  "https://www.rimowa.com",
		Category: DefaultCategory,
		Categories: []CategoryConfig{
			{Name: "Cabin", URL: "https://www.rimowa.com/us/en/cabin-size/"},
			{Name: "Check-In", URL: "https://www.rimowa.com/us/en/check-in-size/"},
			{Name: "Trunk", URL: "https://www.rimowa.com/us/en/large-luggage/"},
			{Name: "All", URL: "https://www.rimowa.com/us/en/all-luggage/"},
		},
		Discovery: DiscoveryConfig{
			ProductPathPattern: "/us/en/luggage/",
			PageSuffix:         ".html",
			LoadMoreText:       "More Results",
			MaxLoadMore:        50,
		},
		Extraction: ExtractionConfig{
			MinPrice:           100,
			CurrencySymbol:     "$",
			MaterialVocabulary: []string{"Aluminum", "Aluminium", "Polycarbonate", "Leather"},
		},
		Browser: BrowserConfig{
			Headless:        true,
			Timeout:         30 * time.Second,
			WaitDelay:       time.Second,
			DisclosureDelay: 500 * time.Millisecond,
			DisableImages:   true,
			ViewportWidth:   1920,
			ViewportHeight:  1080,
		},
		Output: OutputConfig{
			AllCSV:    "rimowa_all_products.csv",
			UniqueCSV: "rimowa_unique_products.csv",
		},
		MongoDB: MongoDBConfig{
			Database:         "rimowa_luggage",
			CollectionAll:    "rimowa_all",
			CollectionUnique: "rimowa",
			Timeout:          10 * time.Second,
			Source:           DefaultSource,
		},
		Log: LogConfig{Level: "info"},
	}
}

// applyDefaults restores values that were explicitly blanked in the document.
func applyDefaults(config *Config) {
	defaults := Default()

	if config.Category == "" {
		config.Category = defaults.Category
	}
	if config.Discovery.PageSuffix == "" {
		config.Discovery.PageSuffix = defaults.Discovery.PageSuffix
	}
	if config.Discovery.LoadMoreText == "" {
		config.Discovery.LoadMoreText = defaults.Discovery.LoadMoreText
	}
	if config.Discovery.MaxLoadMore < 0 {
		config.Discovery.MaxLoadMore = 0
	}
	if config.Extraction.CurrencySymbol == "" {
		config.Extraction.CurrencySymbol = defaults.Extraction.CurrencySymbol
	}
	if len(config.Extraction.MaterialVocabulary) == 0 {
		config.Extraction.MaterialVocabulary = defaults.Extraction.MaterialVocabulary
	}
	if config.Browser.Timeout <= 0 {
		config.Browser.Timeout = defaults.Browser.Timeout
	}
	if config.Browser.ViewportWidth <= 0 || config.Browser.ViewportHeight <= 0 {
		config.Browser.ViewportWidth = defaults.Browser.ViewportWidth
		config.Browser.ViewportHeight = defaults.Browser.ViewportHeight
	}
	if config.Output.AllCSV == "" {
		config.Output.AllCSV = defaults.Output.AllCSV
	}
	if config.Output.UniqueCSV == "" {
		config.Output.UniqueCSV = defaults.Output.UniqueCSV
	}
	if config.MongoDB.Timeout <= 0 {
		config.MongoDB.Timeout = defaults.MongoDB.Timeout
	}
	if config.MongoDB.Source == "" {
		config.MongoDB.Source = defaults.MongoDB.Source
	}
	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
}
