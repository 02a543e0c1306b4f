package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Sector file formats
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// FileInfo represents information about a discovered sector file
type FileInfo struct {
	Path    string
	Name    string
	Sector  string
	Format  string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations relative to a base path
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// SectorName returns the file base name without its extension
func SectorName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatOf returns FormatXLSX or FormatCSV for a supported file name, "" otherwise
func FormatOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	default:
		return ""
	}
}

// FindSectorFiles lists the .xlsx and .csv files directly inside dir, sorted by sector name.
// Hidden files and spreadsheet lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindSectorFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}

		format := FormatOf(name)
		if format == "" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Sector:  SectorName(name),
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Sector != files[j].Sector {
			return files[i].Sector < files[j].Sector
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
