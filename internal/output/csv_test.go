// internal/output/csv_test.go
package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valpere/ProductScrapexter/internal/product"
)

func sampleRecords() []product.VariantRecord {
	return []product.VariantRecord{
		{
			ProductURL:   "https://shop.test/us/en/luggage/cabin.html",
			ProductName:  "Original Cabin",
			VariantSize:  "Cabin",
			Price:        "$1,450.00",
			DimensionsCm: "55 x 40 x 23 cm",
			DimensionsIn: "21.7 x 15.7 x 9.1 inch",
			WeightKg:     "4.3 kg",
			WeightLbs:    "9.5 lbs",
			Colors:       "Silver, Black",
			Material:     "Aluminum",
			SKU:          "92553004",
			Category:     "Luggage",
			Subcategory:  "Cabin",
			MainImageURL: "https://img.test/cabin.jpg",
		},
		{
			ProductURL:  "https://shop.test/us/en/luggage/essential.html",
			ProductName: `Essential "Lite", Check-In`,
			VariantSize: "Check-In L",
			Price:       "$850.00",
			Category:    "Luggage",
			Subcategory: "Check-In",
		},
	}
}

func TestCSVWriter_WriteData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "all.csv")

	if err := WriteCSV(path, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(product.Columns, ",") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"$1,450.00"`) {
		t.Errorf("price with comma should be quoted: %s", lines[1])
	}
}

func TestCSVWriter_EmptyWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unique.csv")
	original := sampleRecords()
	if err := WriteCSV(path, original); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(got) != len(original) {
		t.Fatalf("expected %d records, got %d", len(original), len(got))
	}
	for i := range original {
		if got[i].SKU != original[i].SKU || got[i].VariantSize != original[i].VariantSize || got[i].Price != original[i].Price {
			t.Errorf("record %d (SKU, Variant Size, Price) mismatch: got %+v", i, got[i])
		}
		if got[i] != original[i] {
			t.Errorf("record %d mismatch:\n got  %+v\n want %+v", i, got[i], original[i])
		}
	}
}

func TestReadRecords_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing column", "Product URL,Price\nhttps://a,$1\n"},
		{"bad quoting", strings.Join(product.Columns, ",") + "\n\"unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadRecords(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestReadRecords_ReorderedColumnsAndBOM(t *testing.T) {
	cols := append([]string{}, product.Columns...)
	cols[0], cols[10] = cols[10], cols[0]
	row := make([]string, len(cols))
	row[0] = "SKU-1"
	row[10] = "https://a"
	input := "\ufeff" + strings.Join(cols, ",") + "\n" + strings.Join(row, ",") + "\n"

	records, err := ReadRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRecords failed: %v", err)
	}
	if len(records) != 1 || records[0].SKU != "SKU-1" || records[0].ProductURL != "https://a" {
		t.Errorf("unexpected records: %+v", records)
	}
}
