// internal/errors/service.go - Retry and CLI error reporting
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// Exit codes reported by the CLI.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitConfig      = 2
	ExitBrowser     = 3
	ExitInterrupted = 130
)

// Service retries transient operations and turns errors into CLI output.
type Service struct {
	retryConfig RetryConfig
	verbose     bool
	exitRules   []exitRule
	sleep       func(ctx context.Context, d time.Duration) error
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	MaxRetries    int           `yaml:"max_retries" json:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay" json:"base_delay"`
	BackoffFactor float64       `yaml:"backoff_factor" json:"backoff_factor"`
	MaxDelay      time.Duration `yaml:"max_delay" json:"max_delay"`
}

type exitRule struct {
	target error
	code   int
	title  string
}

// NewService creates a service with three retries and exponential backoff.
func NewService() *Service {
	return &Service{
		retryConfig: RetryConfig{
			MaxRetries:    3,
			BaseDelay:     time.Second * 2,
			BackoffFactor: 2.0,
			MaxDelay:      time.Minute,
		},
		sleep: sleepContext,
	}
}

// WithVerbose enables technical error details
func (s *Service) WithVerbose(verbose bool) *Service {
	s.verbose = verbose
	return s
}

// WithRetry replaces the retry policy.
func (s *Service) WithRetry(config RetryConfig) *Service {
	s.retryConfig = config
	return s
}

// RegisterExitCode maps errors matching target (errors.Is) to code.
// Rules are checked in registration order.
func (s *Service) RegisterExitCode(target error, code int, title string) {
	s.exitRules = append(s.exitRules, exitRule{target: target, code: code, title: title})
}

// ExecuteWithRetry runs operation until it succeeds, fails permanently or
// ctx is done.
func (s *Service) ExecuteWithRetry(ctx context.Context, operation func(ctx context.Context) error, operationName string) error {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		attempts++
		err := operation(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || !s.shouldRetry(err, attempt) {
			break
		}
		if err := s.sleep(ctx, s.calculateDelay(attempt)); err != nil {
			return err
		}
	}

	if attempts == 1 {
		return fmt.Errorf("%s failed: %w", operationName, lastErr)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var retryableErrors = []string{
	"timeout", "timed out", "connection refused", "connection reset", "no such host",
	"server selection", "temporary", "service unavailable", "i/o timeout",
}

// shouldRetry determines if error is retryable
func (s *Service) shouldRetry(err error, attempt int) bool {
	if attempt >= s.retryConfig.MaxRetries {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}
	return false
}

// calculateDelay computes exponential backoff delay
func (s *Service) calculateDelay(attempt int) time.Duration {
	delay := float64(s.retryConfig.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= s.retryConfig.BackoffFactor
	}
	if s.retryConfig.MaxDelay > 0 && time.Duration(delay) > s.retryConfig.MaxDelay {
		return s.retryConfig.MaxDelay
	}
	return time.Duration(delay)
}

// GetExitCode returns appropriate exit code for error
func (s *Service) GetExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	for _, rule := range s.exitRules {
		if stderrors.Is(err, rule.target) {
			return rule.code
		}
	}
	return ExitGeneral
}

// GetUserFriendlyError converts technical errors to user-friendly messages
func (s *Service) GetUserFriendlyError(err error) (title, message string, suggestions []string) {
	if err == nil {
		return "", "", nil
	}
	for _, rule := range s.exitRules {
		if stderrors.Is(err, rule.target) && rule.title != "" {
			title = rule.title
			break
		}
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case stderrors.Is(err, context.Canceled):
		return "Interrupted", "The run was cancelled before it finished.", nil
	case strings.Contains(errStr, "yaml"):
		return "Configuration Error",
			"The configuration file has invalid YAML syntax.",
			[]string{
				"Check YAML indentation (use spaces, not tabs)",
				"Ensure proper quoting of string values",
			}
	case title == "" && (strings.Contains(errStr, "server selection") || strings.Contains(errStr, "mongodb")):
		return "Database Unreachable",
			"Could not reach the document store.",
			[]string{
				"Check the mongodb.uri value and credentials",
				"Make sure your IP address is allowed by the server",
			}
	case strings.Contains(errStr, "chrome") || strings.Contains(errStr, "browser"):
		if title == "" {
			title = "Browser Error"
		}
		return title,
			"The headless browser could not be started.",
			[]string{
				"Install Chrome or Chromium and make sure it is on PATH",
				"Run with -v for technical details",
			}
	}

	if title != "" {
		return title, err.Error(), nil
	}
	return "Unexpected Error",
		"An unexpected error occurred during the operation.",
		[]string{
			"Check your configuration file",
			"Run with -v for technical details",
		}
}

// FormatErrorForCLI formats error for command-line display
func (s *Service) FormatErrorForCLI(err error) string {
	title, message, suggestions := s.GetUserFriendlyError(err)

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n%s\n", title, message)

	if s.verbose {
		fmt.Fprintf(&b, "\nTechnical details: %s\n", err.Error())
	}

	if len(suggestions) > 0 {
		b.WriteString("\nSuggestions:\n")
		for _, suggestion := range suggestions {
			fmt.Fprintf(&b, "  - %s\n", suggestion)
		}
	}

	return b.String()
}
