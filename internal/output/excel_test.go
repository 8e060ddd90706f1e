// internal/output/excel_test.go
package output

import (
	"path/filepath"
	"testing"

	"github.com/valpere/ProductScrapexter/internal/product"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.xlsx")
	all := sampleRecords()
	unique := all[:1]

	err := WriteWorkbook(path,
		Sheet{Name: SheetAllProducts, Records: all},
		Sheet{Name: SheetUniqueProducts, Records: unique},
	)
	if err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SheetAllProducts || sheets[1] != SheetUniqueProducts {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	rows, err := f.GetRows(SheetAllProducts)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows on %s, got %d", SheetAllProducts, len(rows))
	}
	for i, col := range product.Columns {
		if rows[0][i] != col {
			t.Errorf("header %d = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][3] != "$1,450.00" || rows[1][10] != "92553004" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}

	uniqueRows, err := f.GetRows(SheetUniqueProducts)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(uniqueRows) != 2 {
		t.Errorf("expected 2 rows on %s, got %d", SheetUniqueProducts, len(uniqueRows))
	}
}

func TestWriteWorkbook_RequiresSheet(t *testing.T) {
	if err := WriteWorkbook(filepath.Join(t.TempDir(), "x.xlsx")); err == nil {
		t.Error("expected error but got none")
	}
}
