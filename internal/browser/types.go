// internal/browser/types.go
package browser

import "time"

// BrowserConfig defines browser automation configuration
type BrowserConfig struct {
	Headless       bool
	UserDataDir    string
	Timeout        time.Duration // per navigation or action
	ViewportWidth  int
	ViewportHeight int
	WaitDelay      time.Duration // settle time after navigation and load-more clicks
	// DisclosureDelay is the settle time after expanding a specification panel.
	DisclosureDelay time.Duration
	UserAgent       string
	DisableImages   bool
}

// DefaultBrowserConfig returns default browser configuration
func DefaultBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless:        true,
		Timeout:         30 * time.Second,
		ViewportWidth:   1920,
		ViewportHeight:  1080,
		WaitDelay:       time.Second,
		DisclosureDelay: 500 * time.Millisecond,
		DisableImages:   true,
	}
}

// BrowserStats contains browser automation statistics
type BrowserStats struct {
	PagesLoaded      int           `json:"pages_loaded"`
	AverageLoadTime  time.Duration `json:"average_load_time"`
	LoadMoreClicks   int           `json:"load_more_clicks"`
	Disclosures      int           `json:"disclosures"`
	Errors           int           `json:"errors"`
	JavaScriptErrors int           `json:"javascript_errors"`
}
