// internal/config/validation.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError represents a detailed validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []ValidationError

	errs = append(errs, c.validateCategories()...)
	errs = append(errs, c.validateDiscovery()...)
	errs = append(errs, c.validateExtraction()...)
	errs = append(errs, c.validateMongoDB()...)

	if len(errs) > 0 {
		return formatValidationError(errs)
	}
	return nil
}

func (c *Config) validateCategories() []ValidationError {
	var errs []ValidationError
	if len(c.Categories) == 0 {
		errs = append(errs, ValidationError{Field: "categories", Message: "at least one category is required"})
	}
	for i, cat := range c.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		if strings.TrimSpace(cat.URL) == "" {
			errs = append(errs, ValidationError{Field: field + ".url", Value: cat.Name, Message: "category URL is required"})
			continue
		}
		u, err := url.Parse(cat.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{Field: field + ".url", Value: cat.URL, Message: "category URL must be an absolute http(s) URL"})
		}
	}
	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" {
			errs = append(errs, ValidationError{Field: "base_url", Value: c.BaseURL, Message: "base URL must be absolute"})
		}
	}
	return errs
}

func (c *Config) validateDiscovery() []ValidationError {
	if _, err := regexp.Compile(c.Discovery.ProductPathPattern); err != nil {
		return []ValidationError{{
			Field:   "discovery.product_path_pattern",
			Value:   c.Discovery.ProductPathPattern,
			Message: fmt.Sprintf("invalid regular expression: %v", err),
		}}
	}
	return nil
}

func (c *Config) validateExtraction() []ValidationError {
	if c.Extraction.MinPrice <= 0 {
		return []ValidationError{{
			Field:   "extraction.min_price",
			Value:   fmt.Sprintf("%g", c.Extraction.MinPrice),
			Message: "minimum price must be positive",
		}}
	}
	return nil
}

func (c *Config) validateMongoDB() []ValidationError {
	if !c.MongoDB.Enabled() {
		return nil
	}
	var errs []ValidationError
	required := []struct{ field, value string }{
		{"mongodb.database", c.MongoDB.Database},
		{"mongodb.collection_all", c.MongoDB.CollectionAll},
		{"mongodb.collection_unique", c.MongoDB.CollectionUnique},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "required when mongodb.uri is set"})
		}
	}
	return errs
}

// formatValidationError creates a comprehensive error message
func formatValidationError(errs []ValidationError) error {
	var errorMsg strings.Builder

	for i, err := range errs {
		errorMsg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, err.Message))
		if err.Field != "" {
			errorMsg.WriteString(fmt.Sprintf(" (field: %s)", err.Field))
		}
		if err.Value != "" {
			errorMsg.WriteString(fmt.Sprintf(" (value: %s)", err.Value))
		}
	}

	return fmt.Errorf("%w:%s", ErrInvalidConfig, errorMsg.String())
}
