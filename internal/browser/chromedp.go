// internal/browser/chromedp.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/valpere/ProductScrapexter/internal/utils"
)

// ChromeClient drives a single Chrome tab. It satisfies scraper.PageFetcher.
type ChromeClient struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	config      *BrowserConfig
	logger      utils.Logger

	mu                sync.Mutex
	stats             BrowserStats
	navigationSuccess bool
}

// NewChromeClient starts Chrome and opens a tab.
func NewChromeClient(config *BrowserConfig) (*ChromeClient, error) {
	if config == nil {
		config = DefaultBrowserConfig()
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.NoSandbox, // Required for Docker environments
		chromedp.DisableGPU,
		chromedp.WindowSize(config.ViewportWidth, config.ViewportHeight),
	)
	if !config.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if config.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(config.UserDataDir))
	}
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}
	if config.DisableImages {
		opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	client := &ChromeClient{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		config:      config,
		logger:      utils.NewComponentLogger("browser"),
	}

	// The first Run launches the browser.
	if err := chromedp.Run(ctx, chromedp.EmulateViewport(int64(config.ViewportWidth), int64(config.ViewportHeight))); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	return client, nil
}

// run executes actions bounded by the action timeout and by the caller's ctx.
func (c *ChromeClient) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var runCtx context.Context
	var cancel context.CancelFunc
	if c.config.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(c.ctx, c.config.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(c.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate navigates to a URL and waits for page load
func (c *ChromeClient) Navigate(ctx context.Context, url string) error {
	start := time.Now()
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if c.config.WaitDelay > 0 {
		actions = append(actions, chromedp.Sleep(c.config.WaitDelay))
	}

	err := c.run(ctx, actions...)
	loadTime := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.stats.Errors++
		c.navigationSuccess = false
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	c.navigationSuccess = true
	c.stats.PagesLoaded++
	if c.stats.PagesLoaded == 1 {
		c.stats.AverageLoadTime = loadTime
	} else {
		c.stats.AverageLoadTime = (c.stats.AverageLoadTime + loadTime) / 2
	}
	return nil
}

// LoadMore clicks the pagination control labelled text and waits for new items.
func (c *ChromeClient) LoadMore(ctx context.Context, text string) (bool, error) {
	clicked, err := c.evaluate(ctx, loadMoreScript(text))
	if err != nil || !clicked {
		return false, err
	}
	c.mu.Lock()
	c.stats.LoadMoreClicks++
	c.mu.Unlock()
	c.logger.Debugf("Clicked %q", text)
	if c.config.WaitDelay > 0 {
		if err := c.run(ctx, chromedp.Sleep(c.config.WaitDelay)); err != nil {
			return true, err
		}
	}
	return true, nil
}

// RevealSpecifications clicks the size/weight disclosure when one is present.
func (c *ChromeClient) RevealSpecifications(ctx context.Context) (bool, error) {
	clicked, err := c.evaluate(ctx, disclosureScript)
	if err != nil || !clicked {
		return false, err
	}
	c.mu.Lock()
	c.stats.Disclosures++
	c.mu.Unlock()
	if c.config.DisclosureDelay > 0 {
		if err := c.run(ctx, chromedp.Sleep(c.config.DisclosureDelay)); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (c *ChromeClient) evaluate(ctx context.Context, script string) (bool, error) {
	var result bool
	if err := c.run(ctx, chromedp.Evaluate(script, &result)); err != nil {
		c.mu.Lock()
		c.stats.JavaScriptErrors++
		c.mu.Unlock()
		return false, fmt.Errorf("script execution failed: %w", err)
	}
	return result, nil
}

// HTML returns the current page HTML
func (c *ChromeClient) HTML(ctx context.Context) (string, error) {
	c.mu.Lock()
	navSuccess := c.navigationSuccess
	c.mu.Unlock()
	if !navSuccess {
		return "", fmt.Errorf("cannot extract HTML: navigation has not completed successfully")
	}

	var html string
	if err := c.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		c.mu.Lock()
		c.stats.Errors++
		c.mu.Unlock()
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// Stats returns a snapshot of browser statistics
func (c *ChromeClient) Stats() BrowserStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Close closes the tab and shuts the browser down.
func (c *ChromeClient) Close() error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.allocCancel != nil {
		c.allocCancel()
		c.allocCancel = nil
	}
	return nil
}
