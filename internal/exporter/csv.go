package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"bvmtdash/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Long-form column headers after the identifier column
const (
	MetricHeader = "Metric"
	ValueHeader  = "Value"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM so Excel detects the encoding
}

// Write writes headers and records to out
func (w *CSVWriter) Write(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes a CSV file, creating its directory if needed
func (w *CSVWriter) WriteFile(path string, options WriteOptions) error {
	w.logger.Info("writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := w.Write(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// MeltedOptions returns the write options for a long-form export.
// idTitle heads the company column.
func MeltedOptions(idTitle string, rows []domain.MeltedRow) WriteOptions {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.Company, r.Metric, formatFloat(r.Value)}
	}
	return WriteOptions{
		Headers:   []string{idTitle, MetricHeader, ValueHeader},
		Records:   records,
		BOMPrefix: true,
	}
}

// WriteMelted writes the long form of a sector
func (w *CSVWriter) WriteMelted(out io.Writer, idTitle string, rows []domain.MeltedRow) error {
	return w.Write(out, MeltedOptions(idTitle, rows))
}
