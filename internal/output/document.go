// internal/output/document.go
package output

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/valpere/ProductScrapexter/internal/product"
	"go.mongodb.org/mongo-driver/bson"
)

// Provenance and derived fields added to every persisted document.
const (
	FieldLastUpdated  = "last_updated"
	FieldSource       = "source"
	FieldPriceNumeric = "price_numeric"

	// DefaultSource tags documents written by this scraper.
	DefaultSource = "rimowa_scraper"
)

// IndexedFields are indexed on every destination collection.
var IndexedFields = []string{product.ColumnSKU, product.ColumnProductURL, FieldPriceNumeric}

// ErrNoIdentifier is returned for records carrying neither SKU nor Product URL.
var ErrNoIdentifier = errors.New("record has neither SKU nor Product URL")

// Document is a record mapped for the document store.
type Document struct {
	Fields bson.M
	// IdentifierField is the upsert match key: SKU when present, else Product URL.
	IdentifierField string
	IdentifierValue string
}

// MapRecord converts a record into a store document. Blank values become nil,
// provenance is stamped, and a numeric price is derived when Price parses.
func MapRecord(r product.VariantRecord, now time.Time, source string) (Document, error) {
	return MapFields(r.Fields(), now, source)
}

// MapFields is MapRecord over a flat column mapping.
func MapFields(fields map[string]string, now time.Time, source string) (Document, error) {
	doc := make(bson.M, len(fields)+3)
	for k, v := range fields {
		if strings.TrimSpace(v) == "" {
			doc[k] = nil
			continue
		}
		doc[k] = v
	}
	doc[FieldLastUpdated] = now.UTC()
	doc[FieldSource] = source
	if price, ok := ParsePriceNumeric(fields[product.ColumnPrice]); ok {
		doc[FieldPriceNumeric] = price
	}

	for _, field := range []string{product.ColumnSKU, product.ColumnProductURL} {
		if v, ok := doc[field].(string); ok {
			return Document{Fields: doc, IdentifierField: field, IdentifierValue: v}, nil
		}
	}
	return Document{Fields: doc}, ErrNoIdentifier
}

// ParsePriceNumeric strips the currency symbol and thousands separators from
// a formatted price such as "$1,234.50".
func ParsePriceNumeric(price string) (float64, bool) {
	s := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(price))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
