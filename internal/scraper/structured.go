// internal/scraper/structured.go
package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const productType = "Product"

// ProductBlock is a decoded structured-data object declaring @type Product.
type ProductBlock map[string]interface{}

// String returns the scalar value under key as text.
func (b ProductBlock) String(key string) string {
	return stringOf(b[key])
}

// ReadProductBlock returns the first embedded ld+json object of type Product.
// Blocks that fail to decode are skipped.
func ReadProductBlock(doc *goquery.Document) (ProductBlock, bool) {
	var found ProductBlock
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data, err := decodeBlock(s.Text())
		if err != nil {
			return true
		}
		if block, ok := findProduct(data); ok {
			found = block
			return false
		}
		return true
	})
	return found, found != nil
}

var errTrailingData = errors.New("trailing data after structured data block")

// decodeBlock decodes exactly one JSON value.
func decodeBlock(raw string) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.TrimSpace(raw))))
	dec.UseNumber()
	var data interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errTrailingData
	}
	return data, nil
}

// findProduct handles a single object, a top-level list, and an @graph list.
func findProduct(data interface{}) (ProductBlock, bool) {
	switch t := data.(type) {
	case []interface{}:
		for _, item := range t {
			if obj, ok := item.(map[string]interface{}); ok && isProductType(obj["@type"]) {
				return ProductBlock(obj), true
			}
		}
	case map[string]interface{}:
		if isProductType(t["@type"]) {
			return ProductBlock(t), true
		}
		if graph, ok := t["@graph"].([]interface{}); ok {
			return findProduct(graph)
		}
	}
	return nil, false
}

func isProductType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == productType
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && s == productType {
				return true
			}
		}
	}
	return false
}
