package scraper

import (
	"strings"
	"testing"

	"github.com/valpere/ProductScrapexter/internal/product"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"450.00", 450, true},
		{" 1200 ", 1200, true},
		{"99.99", 99.99, true},
		{"", 0, false},
		{"USD 450", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	e := NewVariantExpander(DefaultMinPrice, "$", "Luggage")
	tests := map[float64]string{
		100:     "$100.00",
		450:     "$450.00",
		1234.5:  "$1,234.50",
		12500.1: "$12,500.10",
	}
	for in, want := range tests {
		if got := e.FormatPrice(in); got != want {
			t.Errorf("FormatPrice(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandVariants(t *testing.T) {
	desc := &product.ProductDescription{
		SKU:          "PARENT",
		Name:         "Original Check-In M",
		Image:        "https://img.test/m.jpg",
		Colors:       []string{"Silver", "Black"},
		Material:     "Aluminum",
		DimensionsCm: "69 x 46 x 26 cm",
		WeightKg:     "4.9 kg",
		Offers: []product.OfferDescription{
			{RawPrice: "1450", VariantLabel: " Check-In  M ", OfferSKU: "M1"},
			{RawPrice: "100", VariantLabel: "Threshold"},
			{RawPrice: "99.99", VariantLabel: "Tag"},
			{RawPrice: "", VariantLabel: "Missing"},
		},
	}

	e := NewVariantExpander(DefaultMinPrice, "$", "Luggage")
	records, stats := e.Expand(Target{URL: "https://shop.test/m.html", Subcategory: "Check-In"}, desc)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if stats != (ExpandStats{Accepted: 2, Unparseable: 1, BelowThreshold: 1}) {
		t.Errorf("unexpected stats: %+v", stats)
	}

	first := records[0]
	if first.SKU != "M1" || first.VariantSize != "Check-In M" || first.Price != "$1,450.00" {
		t.Errorf("first record = %+v", first)
	}
	if first.Colors != "Silver, Black" || first.Material != "Aluminum" || first.WeightKg != "4.9 kg" {
		t.Errorf("inherited fields missing: %+v", first)
	}

	second := records[1]
	if second.SKU != "PARENT" {
		t.Errorf("expected parent SKU fallback, got %q", second.SKU)
	}
	if second.Price != "$100.00" {
		t.Errorf("threshold price = %q", second.Price)
	}

	for _, r := range records {
		v, ok := ParsePrice(strings.NewReplacer("$", "", ",", "").Replace(r.Price))
		if !ok || v < DefaultMinPrice {
			t.Errorf("record below admission threshold: %+v", r)
		}
	}
}
