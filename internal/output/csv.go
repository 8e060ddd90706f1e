// internal/output/csv.go
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/ProductScrapexter/internal/product"
)

// CSVWriter writes variant records under the fixed column header.
type CSVWriter struct {
	filename string
	file     *os.File
	writer   *csv.Writer
	header   bool
}

// NewCSVWriter creates filename, and its directory if needed.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	return &CSVWriter{
		filename: filename,
		file:     file,
		writer:   csv.NewWriter(file),
	}, nil
}

// Write appends records, emitting the header before the first batch.
func (w *CSVWriter) Write(records []product.VariantRecord) error {
	return writeRecords(w.writer, records, &w.header)
}

// Close flushes and closes the file.
func (w *CSVWriter) Close() error {
	if w.writer != nil {
		if !w.header {
			if err := writeRecords(w.writer, nil, &w.header); err != nil {
				w.file.Close()
				return err
			}
		}
		w.writer.Flush()
		if err := w.writer.Error(); err != nil {
			w.file.Close()
			return fmt.Errorf("failed to flush %s: %w", w.filename, err)
		}
		w.writer = nil
	}
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

func writeRecords(w *csv.Writer, records []product.VariantRecord, headerWritten *bool) error {
	if !*headerWritten {
		if err := w.Write(product.Columns); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		*headerWritten = true
	}
	for _, r := range records {
		if err := w.Write(r.Values()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteCSV writes records to path, replacing any existing file. An empty
// slice still produces the header row.
func WriteCSV(path string, records []product.VariantRecord) error {
	w, err := NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(records); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// ReadCSV loads records previously written by WriteCSV.
func ReadCSV(path string) ([]product.VariantRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := ReadRecords(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadRecords parses CSV with the fixed header. Columns are located by name,
// so a reordered export still loads.
func ReadRecords(r io.Reader) ([]product.VariantRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		// Spreadsheet tools often prepend a UTF-8 BOM.
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range product.Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var records []product.VariantRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values := make([]string, len(product.Columns))
		for i, col := range product.Columns {
			if j := index[col]; j < len(row) {
				values[i] = row[j]
			}
		}
		rec, err := product.RecordFromValues(values)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
