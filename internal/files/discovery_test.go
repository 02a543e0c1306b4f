package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestFindSectorFiles(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		wantSectors []string
	}{
		{
			name:        "xlsx and csv sorted by sector",
			files:       []string{"Telecom.csv", "Banques.xlsx", "Assurances.XLSX"},
			wantSectors: []string{"Assurances", "Banques", "Telecom"},
		},
		{
			name:        "ignores other formats",
			files:       []string{"Banques.xlsx", "notes.txt", "old.xls", "chart.png"},
			wantSectors: []string{"Banques"},
		},
		{
			name:        "skips hidden and lock files",
			files:       []string{".Banques.xlsx", "~$Banques.xlsx", "Banques.xlsx"},
			wantSectors: []string{"Banques"},
		},
		{
			name:        "empty directory",
			files:       nil,
			wantSectors: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f)
			}

			found, err := NewDiscovery("").FindSectorFiles(dir)
			require.NoError(t, err)

			sectors := make([]string, 0, len(found))
			for _, f := range found {
				sectors = append(sectors, f.Sector)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
				assert.NotEmpty(t, f.Format)
			}
			assert.Equal(t, tt.wantSectors, sectors)
		})
	}
}

func TestFindSectorFiles_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.xlsx"), 0o755))
	touch(t, dir, "Banques.csv")

	found, err := NewDiscovery("").FindSectorFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, FormatCSV, found[0].Format)
}

func TestFindSectorFiles_RelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "data"), 0o755))
	touch(t, filepath.Join(base, "data"), "Banques.xlsx")

	found, err := NewDiscovery(base).FindSectorFiles("data")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "data", "Banques.xlsx"), found[0].Path)
}

func TestFindSectorFiles_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery("").FindSectorFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestSectorNameAndFormat(t *testing.T) {
	assert.Equal(t, "Banques", SectorName("/data/Banques.xlsx"))
	assert.Equal(t, "Services financiers", SectorName("Services financiers.csv"))
	assert.Equal(t, FormatXLSX, FormatOf("a.XLSX"))
	assert.Equal(t, FormatCSV, FormatOf("a.csv"))
	assert.Equal(t, "", FormatOf("a.xls"))
}
