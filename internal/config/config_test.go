// internal/config/config_test.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromBytes(t *testing.T) {
	configYAML := `
name: "bytes_test"
categories:
  - name: "Cabin"
    url: "https://shop.test/cabin/"
extraction:
  min_price: 250
browser:
  wait_delay: 3s
`

	config, err := LoadFromBytes([]byte(configYAML))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if config.Name != "bytes_test" {
		t.Errorf("expected name 'bytes_test', got %q", config.Name)
	}
	if len(config.Categories) != 1 || config.Categories[0].Name != "Cabin" {
		t.Errorf("categories should replace defaults: %+v", config.Categories)
	}
	if config.Extraction.MinPrice != 250 {
		t.Errorf("expected min price 250, got %v", config.Extraction.MinPrice)
	}
	if config.Browser.WaitDelay != 3*time.Second {
		t.Errorf("expected 3s wait delay, got %v", config.Browser.WaitDelay)
	}
	// untouched keys keep their defaults
	if config.Discovery.LoadMoreText != "More Results" || config.Discovery.MaxLoadMore != 50 {
		t.Errorf("unexpected discovery defaults: %+v", config.Discovery)
	}
	if !config.Browser.Headless || !config.Browser.DisableImages {
		t.Error("expected headless with images disabled by default")
	}
	if config.Category != DefaultCategory || config.MongoDB.Source != DefaultSource {
		t.Errorf("unexpected fixed tags: %q %q", config.Category, config.MongoDB.Source)
	}
	if config.MongoDB.Enabled() {
		t.Error("mongodb should be disabled without a URI")
	}
}

func TestLoadFromBytes_BrowserProfileAndSQLiteParams(t *testing.T) {
	configYAML := `
browser:
  user_data_dir: "/tmp/profile"
  disable_images: false
output:
  sqlite: "mirror.db"
  sqlite_params: "?_busy_timeout=1000"
`
	config, err := LoadFromBytes([]byte(configYAML))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if config.Browser.UserDataDir != "/tmp/profile" || config.Browser.DisableImages {
		t.Errorf("unexpected browser settings: %+v", config.Browser)
	}
	if config.Output.SQLiteParams != "?_busy_timeout=1000" {
		t.Errorf("unexpected sqlite params: %q", config.Output.SQLiteParams)
	}
}

func TestLoadFromBytes_EnvExpansion(t *testing.T) {
	t.Setenv("PRODUCTSCRAPEXTER_TEST_URI", "mongodb://db.test:27017")
	configYAML := `
mongodb:
  uri: "${PRODUCTSCRAPEXTER_TEST_URI}"
discovery:
  product_path_pattern: "/luggage/.*\\.html$"
`

	config, err := LoadFromBytes([]byte(configYAML))
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if config.MongoDB.URI != "mongodb://db.test:27017" {
		t.Errorf("expected expanded URI, got %q", config.MongoDB.URI)
	}
	if config.Discovery.ProductPathPattern != `/luggage/.*\.html$` {
		t.Errorf("bare $ should survive expansion, got %q", config.Discovery.ProductPathPattern)
	}
}

func TestLoadFromFile(t *testing.T) {
	const envName = "PRODUCTSCRAPEXTER_DOTENV_DB"
	t.Cleanup(func() { os.Unsetenv(envName) })

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(envName+"=catalogue\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	configYAML := `
name: "file_test"
mongodb:
  uri: "mongodb://localhost:27017"
  database: "${` + envName + `}"
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Name != "file_test" {
		t.Errorf("expected name 'file_test', got %q", config.Name)
	}
	if config.MongoDB.Database != "catalogue" {
		t.Errorf("expected database from .env, got %q", config.MongoDB.Database)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(""); err == nil {
		t.Error("expected error for empty filename")
	}
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no categories", func(c *Config) { c.Categories = nil }, "categories"},
		{"category without url", func(c *Config) { c.Categories[0].URL = "" }, "categories[0].url"},
		{"relative category url", func(c *Config) { c.Categories[1].URL = "/us/en/cabin/" }, "categories[1].url"},
		{"zero min price", func(c *Config) { c.Extraction.MinPrice = 0 }, "extraction.min_price"},
		{"bad path pattern", func(c *Config) { c.Discovery.ProductPathPattern = "(" }, "discovery.product_path_pattern"},
		{"mongo without database", func(c *Config) {
			c.MongoDB.URI = "mongodb://localhost"
			c.MongoDB.Database = ""
		}, "mongodb.database"},
		{"mongo without collection", func(c *Config) {
			c.MongoDB.URI = "mongodb://localhost"
			c.MongoDB.CollectionUnique = " "
		}, "mongodb.collection_unique"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}
			if !strings.Contains(err.Error(), "field: "+tt.field) {
				t.Errorf("error should name %s: %v", tt.field, err)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default configuration should be valid: %v", err)
	}
}

func TestTemplate(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	data, err := Template()
	if err != nil {
		t.Fatalf("Template failed: %v", err)
	}
	if !strings.Contains(string(data), "${MONGODB_URI}") {
		t.Errorf("template should reference MONGODB_URI:\n%s", data)
	}

	config, err := LoadFromBytes(data)
	if err != nil {
		t.Fatalf("template should load: %v", err)
	}
	if len(config.Categories) != 4 || config.Browser.Timeout != 30*time.Second {
		t.Errorf("template lost defaults: %+v", config)
	}
}
