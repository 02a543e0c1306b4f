package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"bvmtdash/pkg/contracts/domain"
)

const (
	valueNumFmt = "0.00"
	idColWidth  = 28
	valColWidth = 22
)

// WriteTableXLSX writes the data table of a sector as a workbook with one sheet
// named after the sector. Headers are the display titles.
func WriteTableXLSX(out io.Writer, sector string, columns []domain.Column, rows []domain.TableRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(sector)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return err
	}
	numFmt := valueNumFmt
	valueStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}

	for c, col := range columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, col.Name); err != nil {
			return err
		}
	}
	if len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(columns))
		if err := f.SetColWidth(sheet, "A", "A", idColWidth); err != nil {
			return err
		}
		if len(columns) > 1 {
			if err := f.SetColWidth(sheet, "B", lastCol, valColWidth); err != nil {
				return err
			}
		}
	}

	for r, row := range rows {
		for c, col := range columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			switch v := row[col.ID].(type) {
			case float64:
				if err := f.SetCellFloat(sheet, cell, v, -1, 64); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, valueStyle); err != nil {
					return err
				}
			case string:
				if err := f.SetCellStr(sheet, cell, v); err != nil {
					return err
				}
			case nil:
			default:
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err = f.WriteTo(out)
	return err
}
