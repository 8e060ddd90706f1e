// internal/scraper/variants.go
package scraper

import (
	"math"
	"strconv"
	"strings"

	"github.com/valpere/ProductScrapexter/internal/product"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// DefaultMinPrice drops placeholder and accessory offers.
	DefaultMinPrice = 100.0
	// DefaultCurrencySymbol prefixes formatted prices.
	DefaultCurrencySymbol = "$"
)

// ExpandStats counts how the offers of one description were handled.
type ExpandStats struct {
	Accepted       int
	Unparseable    int
	BelowThreshold int
}

// Add accumulates other into s.
func (s *ExpandStats) Add(other ExpandStats) {
	s.Accepted += other.Accepted
	s.Unparseable += other.Unparseable
	s.BelowThreshold += other.BelowThreshold
}

// VariantExpander turns each acceptable offer into one VariantRecord.
type VariantExpander struct {
	minPrice float64
	currency string
	category string
	printer  *message.Printer
}

// NewVariantExpander returns an expander that accepts prices >= minPrice.
func NewVariantExpander(minPrice float64, currency, category string) *VariantExpander {
	return &VariantExpander{
		minPrice: minPrice,
		currency: currency,
		category: category,
		printer:  message.NewPrinter(language.English),
	}
}

// ParsePrice parses a raw offer price. Non-numeric and non-finite values fail.
func ParsePrice(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatPrice renders v with thousands grouping and two decimals, e.g. "$1,234.50".
func (e *VariantExpander) FormatPrice(v float64) string {
	return e.currency + e.printer.Sprint(number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// Expand emits one record per offer whose price parses and meets the minimum.
// Product-level fields are copied onto every record.
func (e *VariantExpander) Expand(target Target, desc *product.ProductDescription) ([]product.VariantRecord, ExpandStats) {
	var stats ExpandStats
	var records []product.VariantRecord
	colors := strings.Join(desc.Colors, ", ")

	for _, offer := range desc.Offers {
		price, ok := ParsePrice(offer.RawPrice)
		if !ok {
			stats.Unparseable++
			continue
		}
		if price < e.minPrice {
			stats.BelowThreshold++
			continue
		}

		sku := offer.OfferSKU
		if sku == "" {
			sku = desc.SKU
		}
		records = append(records, product.VariantRecord{
			ProductURL:   target.URL,
			ProductName:  desc.Name,
			VariantSize:  clean(offer.VariantLabel),
			Price:        e.FormatPrice(price),
			DimensionsCm: desc.DimensionsCm,
			DimensionsIn: desc.DimensionsIn,
			WeightKg:     desc.WeightKg,
			WeightLbs:    desc.WeightLb,
			Colors:       colors,
			Material:     desc.Material,
			SKU:          sku,
			Category:     e.category,
			Subcategory:  target.Subcategory,
			MainImageURL: desc.Image,
		})
		stats.Accepted++
	}
	return records, stats
}
