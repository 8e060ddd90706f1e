// internal/scraper/discovery.go
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/valpere/ProductScrapexter/internal/monitoring"
	"github.com/valpere/ProductScrapexter/internal/utils"
)

// PageFetcher drives a rendering browser session.
type PageFetcher interface {
	// Navigate loads url and waits for the document to settle.
	Navigate(ctx context.Context, url string) error
	// LoadMore clicks the control labelled text, reporting whether one was found.
	LoadMore(ctx context.Context, text string) (bool, error)
	// RevealSpecifications expands collapsed specification panels.
	RevealSpecifications(ctx context.Context) (bool, error)
	// HTML returns the current rendered document.
	HTML(ctx context.Context) (string, error)
}

// Category is a named listing page.
type Category struct {
	Name string
	URL  string
}

// Target is a product page to extract, tagged with the listing it came from.
type Target struct {
	URL         string
	Subcategory string
}

// LinkFilter decides which anchors on a listing page are product pages.
type LinkFilter struct {
	base        *url.URL
	pathPattern *regexp.Regexp
	suffix      string
}

// NewLinkFilter resolves relative links against baseURL and keeps those whose
// absolute URL matches pathPattern and ends with suffix.
func NewLinkFilter(baseURL, pathPattern, suffix string) (*LinkFilter, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	re, err := regexp.Compile(pathPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid product path pattern %q: %w", pathPattern, err)
	}
	return &LinkFilter{base: base, pathPattern: re, suffix: suffix}, nil
}

// Match returns the absolute product URL for href. The fragment is dropped
// and the suffix must end the URL, so query variants are rejected.
func (f *LinkFilter) Match(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := f.base.ResolveReference(ref)
	abs.Fragment = ""
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	full := abs.String()
	if !strings.HasSuffix(full, f.suffix) || !f.pathPattern.MatchString(full) {
		return "", false
	}
	return full, true
}

// CollectProductLinks returns matching anchors in document order without duplicates.
func CollectProductLinks(doc *goquery.Document, filter *LinkFilter) []string {
	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if link, ok := filter.Match(href); ok && !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})
	return links
}

// ListingCrawler expands each category listing and gathers its product pages.
type ListingCrawler struct {
	fetcher      PageFetcher
	filter       *LinkFilter
	loadMoreText string
	maxLoadMore  int
	limiter      *utils.RateLimiter
	metrics      *monitoring.MetricsManager
	logger       utils.Logger
}

// ListingOptions configures a ListingCrawler.
type ListingOptions struct {
	LoadMoreText string
	MaxLoadMore  int
	Limiter      *utils.RateLimiter
	Metrics      *monitoring.MetricsManager
	Logger       utils.Logger
}

// NewListingCrawler creates a crawler over fetcher.
func NewListingCrawler(fetcher PageFetcher, filter *LinkFilter, opts ListingOptions) *ListingCrawler {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewComponentLogger("listing")
	}
	return &ListingCrawler{
		fetcher:      fetcher,
		filter:       filter,
		loadMoreText: opts.LoadMoreText,
		maxLoadMore:  opts.MaxLoadMore,
		limiter:      opts.Limiter,
		metrics:      opts.Metrics,
		logger:       logger,
	}
}

// Discover visits each category in order. Links are deduplicated within a
// category only, so a product listed under two categories yields two targets.
// A category that fails to load is logged and skipped.
func (c *ListingCrawler) Discover(ctx context.Context, categories []Category) ([]Target, error) {
	var targets []Target
	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			return targets, err
		}
		links, err := c.discoverCategory(ctx, cat)
		if err != nil {
			if ctx.Err() != nil {
				return targets, ctx.Err()
			}
			c.logger.WithFields(map[string]interface{}{
				"category": cat.Name,
				"url":      cat.URL,
			}).Warnf("Skipping category: %v", err)
			continue
		}
		c.logger.Infof("Found %d products in %s", len(links), cat.Name)
		c.metrics.RecordListing(cat.Name, len(links))
		for _, link := range links {
			targets = append(targets, Target{URL: link, Subcategory: cat.Name})
		}
	}
	return targets, nil
}

func (c *ListingCrawler) discoverCategory(ctx context.Context, cat Category) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := c.fetcher.Navigate(ctx, cat.URL); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	for i := 0; i < c.maxLoadMore; i++ {
		clicked, err := c.fetcher.LoadMore(ctx, c.loadMoreText)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Debugf("Load more stopped after %d clicks: %v", i, err)
			break
		}
		if !clicked {
			break
		}
	}

	html, err := c.fetcher.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing HTML: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}
	return CollectProductLinks(doc, c.filter), nil
}
