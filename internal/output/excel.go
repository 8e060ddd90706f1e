// internal/output/excel.go
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valpere/ProductScrapexter/internal/product"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the run workbook.
const (
	SheetAllProducts    = "All Products"
	SheetUniqueProducts = "Unique Products"
)

const defaultColumnWidth = 18.0

// columnWidths widens the long text columns.
var columnWidths = map[string]float64{
	product.ColumnProductURL:   60,
	product.ColumnProductName:  32,
	product.ColumnMainImageURL: 60,
	product.ColumnColors:       28,
}

// Sheet is one worksheet of records.
type Sheet struct {
	Name    string
	Records []product.VariantRecord
}

// WriteWorkbook saves each sheet with a styled, frozen, filterable header row.
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("at least one sheet is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file := excelize.NewFile()
	defer file.Close()

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := file.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := file.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := file.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}
		if err := writeSheet(file, sheet, headerStyle); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
	}
	file.SetActiveSheet(0)

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(file *excelize.File, sheet Sheet, headerStyle int) error {
	header := make([]interface{}, len(product.Columns))
	for i, col := range product.Columns {
		header[i] = col
	}
	if err := file.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(product.Columns))
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(sheet.Name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, rec := range sheet.Records {
		values := rec.Values()
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return err
		}
	}

	for i, col := range product.Columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := defaultColumnWidth
		if w, ok := columnWidths[col]; ok {
			width = w
		}
		if err := file.SetColWidth(sheet.Name, name, name, width); err != nil {
			return err
		}
	}

	lastRow := len(sheet.Records) + 1
	if err := file.AutoFilter(sheet.Name, fmt.Sprintf("A1:%s%d", lastCol, lastRow), nil); err != nil {
		return err
	}
	return file.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
