package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/internal/files"
	"bvmtdash/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// ParseSectorFile reads one sector file into a dataset named after the file.
// Workbooks are read from their first sheet using the cells' formatted text, so a
// percent-formatted 0.1234 arrives as "12.34%". The first non-blank row is the header.
func ParseSectorFile(path string) (*domain.SectorDataset, error) {
	var (
		rows [][]string
		err  error
	)

	switch files.FormatOf(path) {
	case files.FormatXLSX:
		rows, err = readWorkbook(path)
	case files.FormatCSV:
		rows, err = readCSV(path)
	default:
		return nil, apierrors.NewParsingError(fmt.Sprintf("unsupported sector file %s", path), nil)
	}
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("read %s", path), err).WithContext("file", path)
	}

	ds, err := buildDataset(files.SectorName(path), path, rows)
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("parse %s", path), err).WithContext("file", path)
	}
	return ds, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return parseCSV(fh)
}

func parseCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}

// buildDataset validates the header and drops blank rows
func buildDataset(name, source string, rows [][]string) (*domain.SectorDataset, error) {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("no header row")
	}

	header := trimRight(trimCells(rows[start]))
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs an identifier column and at least one metric column, got %d column(s)", len(header))
	}

	seen := make(map[string]int, len(header))
	for i, h := range header {
		if h == "" {
			return nil, fmt.Errorf("header column %d is empty", i+1)
		}
		if prev, dup := seen[h]; dup {
			return nil, fmt.Errorf("header %q appears in columns %d and %d", h, prev+1, i+1)
		}
		seen[h] = i
	}

	data := make([][]string, 0, len(rows)-start-1)
	for i, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}
		cells := trimCells(row)
		if len(cells) > len(header) && !isBlank(cells[len(header):]) {
			return nil, fmt.Errorf("row %d has %d cells but the header has %d", start+i+2, len(cells), len(header))
		}
		if cells[0] == "" {
			return nil, fmt.Errorf("row %d has no value in identifier column %q", start+i+2, header[0])
		}
		data = append(data, cells)
	}

	return domain.NewSectorDataset(name, source, header, data), nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// trimRight drops trailing empty cells
func trimRight(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}
