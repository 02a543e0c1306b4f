package dataprocessing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/internal/shared/testutil"
)

func TestDefaultLabels(t *testing.T) {
	labels := DefaultLabels()
	require.NoError(t, labels.Validate(testutil.SectorHeaders))

	title, ok := labels.Title("resultat / vc")
	assert.True(t, ok)
	assert.Equal(t, "ROE( resultat / vc )", title)

	title, ok = labels.Title("R&D/vc")
	assert.True(t, ok)
	assert.Equal(t, "S.R.Kloe( R&D / vc )", title)

	_, ok = labels.Title("resultat/vc")
	assert.False(t, ok, "matching is exact")
}

func TestLabelMap_Validate(t *testing.T) {
	err := DefaultLabels().Validate([]string{"Entreprise", "zeta", "alpha"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrLabelMissing))

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "alpha", appErr.Context["column"])
	assert.Equal(t, []string{"alpha", "zeta"}, appErr.Context["missing"])
}

func TestNewLabelMap_Rejects(t *testing.T) {
	_, err := NewLabelMap([]Label{{Column: "a", Title: "A"}, {Column: "a", Title: "B"}})
	require.Error(t, err)

	_, err = NewLabelMap([]Label{{Column: "a", Title: " "}})
	require.Error(t, err)
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`labels:
  - column: "resultat / vc"
    title: "Rentabilite des fonds propres"
  - column: "marge"
    title: "Marge nette"
`), 0o644))

	labels, err := LoadLabels(path)
	require.NoError(t, err)

	title, _ := labels.Title("resultat / vc")
	assert.Equal(t, "Rentabilite des fonds propres", title)
	title, _ = labels.Title("marge")
	assert.Equal(t, "Marge nette", title)

	entries := labels.Entries()
	assert.Equal(t, "resultat / vc", entries[1].Column, "overridden entries keep their position")
	assert.Equal(t, "marge", entries[len(entries)-1].Column)
	assert.Equal(t, DefaultLabels().Len()+1, labels.Len())
}

func TestLoadLabels_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("titles: []\n"), 0o644))

	_, err := LoadLabels(path)
	require.Error(t, err)
	assert.Equal(t, apierrors.ErrTypeConfig, apierrors.TypeOf(err))
}
