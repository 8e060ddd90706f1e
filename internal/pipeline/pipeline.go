// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valpere/ProductScrapexter/internal/monitoring"
	"github.com/valpere/ProductScrapexter/internal/scraper"
	"github.com/valpere/ProductScrapexter/internal/utils"
)

// Runner drives discovery and extraction one page at a time.
type Runner struct {
	fetcher    scraper.PageFetcher
	crawler    *scraper.ListingCrawler
	extractor  *scraper.Extractor
	categories []scraper.Category
	limiter    *utils.RateLimiter
	metrics    *monitoring.MetricsManager
	state      *monitoring.RunState
	logger     utils.Logger
}

// RunnerConfig holds the collaborators of a Runner. Metrics, State and
// Limiter are optional.
type RunnerConfig struct {
	Fetcher    scraper.PageFetcher
	Crawler    *scraper.ListingCrawler
	Extractor  *scraper.Extractor
	Categories []scraper.Category
	Limiter    *utils.RateLimiter
	Metrics    *monitoring.MetricsManager
	State      *monitoring.RunState
	Logger     utils.Logger
}

// NewRunner validates cfg and builds a Runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("page fetcher is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewComponentLogger("pipeline")
	}
	return &Runner{
		fetcher:    cfg.Fetcher,
		crawler:    cfg.Crawler,
		extractor:  cfg.Extractor,
		categories: cfg.Categories,
		limiter:    cfg.Limiter,
		metrics:    cfg.Metrics,
		state:      cfg.State,
		logger:     logger,
	}, nil
}

// Run discovers product pages from every category and extracts them.
// On cancellation the records gathered so far are returned with ctx.Err().
func (r *Runner) Run(ctx context.Context) (*RecordSet, error) {
	if r.crawler == nil {
		return nil, fmt.Errorf("listing crawler is required")
	}
	r.state.SetPhase(monitoring.PhaseDiscovering)
	targets, err := r.crawler.Discover(ctx, r.categories)
	if err != nil {
		return NewRecordSet(), fmt.Errorf("discovery interrupted: %w", err)
	}
	r.logger.Infof("Found %d product pages across %d categories", len(targets), len(r.categories))
	return r.ScrapeTargets(ctx, targets)
}

// ScrapeTargets extracts each target in order. Failures are confined to
// their page.
func (r *Runner) ScrapeTargets(ctx context.Context, targets []scraper.Target) (*RecordSet, error) {
	r.state.SetPhase(monitoring.PhaseExtracting)
	set := NewRecordSet()
	var totals scraper.ExpandStats

	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return set, err
		}
		logger := r.logger.WithFields(map[string]interface{}{
			"url":         target.URL,
			"subcategory": target.Subcategory,
		})
		logger.Infof("Scraping %d/%d", i+1, len(targets))

		start := time.Now()
		result, status, err := r.scrapePage(ctx, target)
		r.metrics.RecordPage(status, time.Since(start))
		if err != nil {
			if ctx.Err() != nil {
				return set, ctx.Err()
			}
			logger.Warnf("Skipping page: %v", err)
			continue
		}

		set.Add(result.Records...)
		totals.Add(result.Stats)
		r.metrics.RecordVariants(result.Stats.Accepted, result.Stats.Unparseable, result.Stats.BelowThreshold)
		logger.Infof("Extracted %d variants - Dims: %s, Weight: %s",
			len(result.Records),
			orNA(result.Description.DimensionsCm),
			orNA(result.Description.WeightKg))
	}

	r.metrics.SetRecordSet(len(set.Unique()), set.Duplicates())
	r.logger.Infof("Extraction complete: %d variants, %d unique, %d duplicates, %d offers rejected",
		set.Len(), len(set.Unique()), set.Duplicates(), totals.Unparseable+totals.BelowThreshold)
	return set, nil
}

func (r *Runner) scrapePage(ctx context.Context, target scraper.Target) (*scraper.PageResult, string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, monitoring.PageNavFailed, err
	}
	if err := r.fetcher.Navigate(ctx, target.URL); err != nil {
		return nil, monitoring.PageNavFailed, fmt.Errorf("navigation failed: %w", err)
	}

	revealed, err := r.fetcher.RevealSpecifications(ctx)
	if err != nil {
		r.logger.WithField("url", target.URL).Debugf("Specification disclosure failed: %v", err)
	} else if revealed {
		r.logger.WithField("url", target.URL).Debug("Expanded specification panel")
	}

	html, err := r.fetcher.HTML(ctx)
	if err != nil {
		return nil, monitoring.PageNavFailed, fmt.Errorf("failed to read page HTML: %w", err)
	}

	result, err := r.extractor.ExtractPage(html, target)
	switch {
	case errors.Is(err, scraper.ErrNoStructuredData):
		return nil, monitoring.PageNoData, err
	case err != nil:
		return nil, monitoring.PageParseFailed, err
	}
	return result, monitoring.PageExtracted, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
