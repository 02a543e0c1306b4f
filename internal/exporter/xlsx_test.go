package exporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bvmtdash/pkg/contracts/domain"
)

func TestWriteTableXLSX(t *testing.T) {
	columns := []domain.Column{
		{ID: "Entreprise", Name: "Entreprise"},
		{ID: "resultat / vc", Name: "ROE( resultat / vc )"},
	}
	rows := []domain.TableRow{
		{"Entreprise": "BIAT", "resultat / vc": 15.2},
		{"Entreprise": "STB", "resultat / vc": 8.75},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTableXLSX(&buf, "Banques", columns, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Banques"}, f.GetSheetList())

	got, err := f.GetRows("Banques")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Entreprise", "ROE( resultat / vc )"},
		{"BIAT", "15.20"},
		{"STB", "8.75"},
	}, got)

	raw, err := f.GetCellValue("Banques", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "15.2", raw)
}

func TestWriteTableXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTableXLSX(&buf, "Vide", nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Vide"}, f.GetSheetList())
}
