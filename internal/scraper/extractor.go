// internal/scraper/extractor.go
package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/valpere/ProductScrapexter/internal/product"
)

// ErrNoStructuredData is returned for pages without a Product ld+json block.
var ErrNoStructuredData = errors.New("no structured product data")

// PageResult is the outcome of extracting one product page.
type PageResult struct {
	Description *product.ProductDescription
	Records     []product.VariantRecord
	Stats       ExpandStats
}

// Extractor runs block reading, normalization and variant expansion over a page.
type Extractor struct {
	normalizer *Normalizer
	expander   *VariantExpander
}

// NewExtractor wires a normalizer and expander together.
func NewExtractor(normalizer *Normalizer, expander *VariantExpander) *Extractor {
	return &Extractor{normalizer: normalizer, expander: expander}
}

// ExtractPage parses rendered HTML for target. A page lacking a Product block
// yields ErrNoStructuredData; a page whose offers are all rejected yields an
// empty record list and no error.
func (x *Extractor) ExtractPage(html string, target Target) (*PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return x.ExtractDocument(doc, target)
}

// ExtractDocument is ExtractPage for an already parsed document.
func (x *Extractor) ExtractDocument(doc *goquery.Document, target Target) (*PageResult, error) {
	block, ok := ReadProductBlock(doc)
	if !ok {
		return nil, ErrNoStructuredData
	}

	desc := x.normalizer.Normalize(block, doc)
	records, stats := x.expander.Expand(target, desc)
	return &PageResult{Description: desc, Records: records, Stats: stats}, nil
}
