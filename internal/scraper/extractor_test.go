package scraper

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func newTestExtractor() *Extractor {
	return NewExtractor(
		NewNormalizer(nil),
		NewVariantExpander(DefaultMinPrice, DefaultCurrencySymbol, "Luggage"),
	)
}

func page(body string) string {
	return "<html><head></head><body>" + body + "</body></html>"
}

func ldJSON(payload string) string {
	return `<script type="application/ld+json">` + payload + `</script>`
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func TestExtractPageAdmissionFilter(t *testing.T) {
	html := page(ldJSON(`{"@type":"Product","name":"Cabin S","sku":"ABC123",
		"offers":[{"price":"450.00","variant":"Silver"},{"price":"25.00","variant":"Sticker"}]}`))

	result, err := newTestExtractor().ExtractPage(html, Target{URL: "https://shop.test/luggage/cabin-s.html", Subcategory: "Cabin"})
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d: %+v", len(result.Records), result.Records)
	}

	rec := result.Records[0]
	if rec.Price != "$450.00" || rec.SKU != "ABC123" {
		t.Errorf("unexpected record price/sku: %q %q", rec.Price, rec.SKU)
	}
	if rec.VariantSize != "Silver" || rec.ProductName != "Cabin S" {
		t.Errorf("unexpected variant/name: %q %q", rec.VariantSize, rec.ProductName)
	}
	if rec.Category != "Luggage" || rec.Subcategory != "Cabin" {
		t.Errorf("unexpected category: %q %q", rec.Category, rec.Subcategory)
	}
	if rec.ProductURL != "https://shop.test/luggage/cabin-s.html" {
		t.Errorf("unexpected URL: %q", rec.ProductURL)
	}
	if result.Stats.Accepted != 1 || result.Stats.BelowThreshold != 1 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
}

func TestExtractPageListItemMeasurements(t *testing.T) {
	html := page(ldJSON(`{"@type":"Product","name":"Trunk","sku":"T1","offers":{"price":"1200","variant":"Black"}}`) +
		`<ul><li>Measurement: 55 x 40 x 20 cm (21.6 x 15.7 x 7.9 inch)</li><li>Weight: 4.3 kg (9.5 lbs)</li></ul>`)

	result, err := newTestExtractor().ExtractPage(html, Target{URL: "https://shop.test/luggage/trunk.html"})
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}

	rec := result.Records[0]
	if rec.DimensionsCm != "55 x 40 x 20 cm" {
		t.Errorf("Dimensions (cm) = %q", rec.DimensionsCm)
	}
	if rec.DimensionsIn != "21.6 x 15.7 x 7.9 inch" {
		t.Errorf("Dimensions (in) = %q", rec.DimensionsIn)
	}
	if rec.WeightKg != "4.3 kg" || rec.WeightLbs != "9.5 lbs" {
		t.Errorf("weights = %q / %q", rec.WeightKg, rec.WeightLbs)
	}
	if rec.Price != "$1,200.00" {
		t.Errorf("Price = %q", rec.Price)
	}
}

func TestExtractPageWithoutProductBlock(t *testing.T) {
	html := page(ldJSON(`{"@type":"Organization","name":"Shop"}`))

	_, err := newTestExtractor().ExtractPage(html, Target{URL: "https://shop.test/x.html"})
	if !errors.Is(err, ErrNoStructuredData) {
		t.Fatalf("expected ErrNoStructuredData, got %v", err)
	}
}

func TestExtractPageAllOffersRejected(t *testing.T) {
	html := page(ldJSON(`{"@type":"Product","name":"Tag","offers":[{"price":"15"},{"price":"n/a"}]}`))

	result, err := newTestExtractor().ExtractPage(html, Target{URL: "https://shop.test/tag.html"})
	if err != nil {
		t.Fatalf("ExtractPage failed: %v", err)
	}
	if len(result.Records) != 0 {
		t.Errorf("expected no records, got %d", len(result.Records))
	}
	if result.Stats.Unparseable != 1 || result.Stats.BelowThreshold != 1 {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
}
