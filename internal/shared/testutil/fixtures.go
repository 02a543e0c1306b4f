package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// SectorHeaders is the column layout of the exchange's ratio sheets
var SectorHeaders = []string{
	"Entreprise",
	"resultat / vc",
	"resultat/total actif",
	"dette /total",
	"dette / total passif",
	"R&D/vc",
}

// WriteSectorXLSX writes header and rows to dir/<name>.xlsx on the first sheet and returns the path.
// Cells are written as text so the file reads back exactly as given.
func WriteSectorXLSX(t *testing.T, dir, name string, header []string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	writeRow := func(r int, values []string) {
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStr(sheet, cell, v))
		}
	}

	writeRow(1, header)
	for i, row := range rows {
		writeRow(i+2, row)
	}

	path := filepath.Join(dir, name+".xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteSectorCSV writes header and rows to dir/<name>.csv and returns the path
func WriteSectorCSV(t *testing.T, dir, name string, header []string, rows [][]string) string {
	t.Helper()

	path := filepath.Join(dir, name+".csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(header))
	require.NoError(t, w.WriteAll(rows))
	return path
}

// SampleSectors writes two small sectors using the full exchange column layout
// and returns the data directory.
func SampleSectors(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteSectorXLSX(t, dir, "Banques", SectorHeaders, [][]string{
		{"BIAT", "15.20%", "1.45%", "88.10%", "90.02%", "0.00%"},
		{"STB", "8.75%", "0.60%", "91.30%", "93.11%", "0.10%"},
		{"Attijari", "17.05%", "1.80%", "87.40%", "89.95%", "0.05%"},
	})
	WriteSectorXLSX(t, dir, "Assurances", SectorHeaders, [][]string{
		{"STAR", "9.10%", "2.10%", "70.00%", "75.50%", "0.20%"},
		{"Astree", "12.34%", "3.30%", "65.25%", "68.40%", "0.15%"},
	})
	return dir
}
