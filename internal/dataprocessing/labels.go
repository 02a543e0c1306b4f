package dataprocessing

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	apierrors "bvmtdash/internal/errors"
)

// Label maps a raw source column to the title shown in the legend and table header
type Label struct {
	Column string `yaml:"column"`
	Title  string `yaml:"title"`
}

// LabelMap is an ordered column-to-title mapping
type LabelMap struct {
	entries []Label
	index   map[string]int
}

// DefaultLabels returns the built-in ratio titles
func DefaultLabels() *LabelMap {
	m, _ := NewLabelMap([]Label{
		{Column: "Entreprise", Title: "Entreprise"},
		{Column: "resultat / vc", Title: "ROE( resultat / vc )"},
		{Column: "resultat/total actif", Title: "ROA( resultat / total actif )"},
		{Column: "dette /total", Title: "ratio 1( dette / total )"},
		{Column: "dette / total passif", Title: "ratio 2( dette / total passif)"},
		{Column: "R&D/vc", Title: "S.R.Kloe( R&D / vc )"},
	})
	return m
}

// NewLabelMap builds a map from entries. Columns are matched exactly, whitespace included.
func NewLabelMap(entries []Label) (*LabelMap, error) {
	m := &LabelMap{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if e.Column == "" || strings.TrimSpace(e.Title) == "" {
			return nil, apierrors.NewConfigError(fmt.Sprintf("label entry %q -> %q needs both column and title", e.Column, e.Title), nil)
		}
		if _, dup := m.index[e.Column]; dup {
			return nil, apierrors.NewConfigError(fmt.Sprintf("column %q is labelled twice", e.Column), nil)
		}
		m.index[e.Column] = len(m.entries)
		m.entries = append(m.entries, e)
	}
	return m, nil
}

type labelsFile struct {
	Labels []Label `yaml:"labels"`
}

// LoadLabels reads a YAML label file and layers it over the defaults.
// A column present in both keeps its default position and takes the file's title.
func LoadLabels(path string) (*LabelMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apierrors.NewConfigError(fmt.Sprintf("read labels file %s", path), err)
	}

	var lf labelsFile
	if err := yaml.UnmarshalStrict(data, &lf); err != nil {
		return nil, apierrors.NewConfigError(fmt.Sprintf("parse labels file %s", path), err)
	}

	overrides, err := NewLabelMap(lf.Labels)
	if err != nil {
		return nil, err
	}
	return DefaultLabels().Merge(overrides), nil
}

// Merge returns a new map with other's entries applied over m
func (m *LabelMap) Merge(other *LabelMap) *LabelMap {
	entries := m.Entries()
	for _, e := range other.entries {
		if i, ok := m.index[e.Column]; ok {
			entries[i].Title = e.Title
			continue
		}
		entries = append(entries, e)
	}
	merged, _ := NewLabelMap(entries)
	return merged
}

// Title returns the display title of column
func (m *LabelMap) Title(column string) (string, bool) {
	i, ok := m.index[column]
	if !ok {
		return "", false
	}
	return m.entries[i].Title, true
}

// Entries returns a copy of the entries in order
func (m *LabelMap) Entries() []Label {
	out := make([]Label, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries
func (m *LabelMap) Len() int { return len(m.entries) }

// Validate checks that every column has a title. The error names the first
// missing column and lists all of them under the "missing" context key.
func (m *LabelMap) Validate(columns []string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := m.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return apierrors.NewLabelMissingError(missing[0]).WithContext("missing", missing)
}
