package dataprocessing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/internal/shared/testutil"
	"bvmtdash/pkg/contracts/domain"
)

func TestLoadStore(t *testing.T) {
	dir := testutil.SampleSectors(t)
	logger, logs := testutil.NewTestLogger(t)

	store, err := LoadStore(context.Background(), LoadOptions{
		Dir:     dir,
		Workers: 2,
		Labels:  DefaultLabels(),
		Logger:  logger,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Assurances", "Banques"}, store.Names())
	assert.Equal(t, "Assurances", store.Default())
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, testutil.SectorHeaders, store.Headers())

	ds, ok := store.Get("Banques")
	require.True(t, ok)
	assert.Equal(t, 3, ds.Len())

	_, ok = store.Get("banques")
	assert.False(t, ok)

	assert.True(t, logs.ContainsMessage("sector data loaded"))
	assert.True(t, logs.ContainsAttr("sectors", int64(2)))
	testutil.AssertNoErrors(t, logs)
}

func TestLoadStore_MixedFormats(t *testing.T) {
	dir := t.TempDir()
	header := []string{"Entreprise", "resultat / vc"}
	testutil.WriteSectorXLSX(t, dir, "Banques", header, [][]string{{"BIAT", "10%"}})
	testutil.WriteSectorCSV(t, dir, "Leasing", header, [][]string{{"CIL", "5%"}})

	store, err := LoadStore(context.Background(), LoadOptions{Dir: dir, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"Banques", "Leasing"}, store.Names())
}

func TestLoadStore_Errors(t *testing.T) {
	header := []string{"Entreprise", "resultat / vc"}

	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		labels  *LabelMap
		wantErr error
		errType apierrors.ErrorType
	}{
		{
			name:    "empty directory",
			setup:   func(*testing.T, string) {},
			wantErr: apierrors.ErrNoSectorsFound,
			errType: apierrors.ErrTypeStorage,
		},
		{
			name: "duplicate sector name",
			setup: func(t *testing.T, dir string) {
				testutil.WriteSectorXLSX(t, dir, "Banques", header, [][]string{{"BIAT", "1"}})
				testutil.WriteSectorCSV(t, dir, "Banques", header, [][]string{{"BIAT", "1"}})
			},
			wantErr: apierrors.ErrDuplicateName,
			errType: apierrors.ErrTypeConfig,
		},
		{
			name: "schema mismatch",
			setup: func(t *testing.T, dir string) {
				testutil.WriteSectorXLSX(t, dir, "Banques", header, [][]string{{"BIAT", "1"}})
				testutil.WriteSectorXLSX(t, dir, "Leasing", []string{"Entreprise", "dette /total"}, [][]string{{"CIL", "1"}})
			},
			wantErr: apierrors.ErrSchemaMismatch,
			errType: apierrors.ErrTypeConfig,
		},
		{
			name: "column without label",
			setup: func(t *testing.T, dir string) {
				testutil.WriteSectorXLSX(t, dir, "Banques", []string{"Entreprise", "marge"}, [][]string{{"BIAT", "1"}})
			},
			labels:  DefaultLabels(),
			wantErr: apierrors.ErrLabelMissing,
			errType: apierrors.ErrTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			_, err := LoadStore(context.Background(), LoadOptions{Dir: dir, Workers: 2, Labels: tt.labels})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.errType, apierrors.TypeOf(err))
		})
	}
}

func TestLoadStore_ParseErrorStopsLoading(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSectorXLSX(t, dir, "Banques", []string{"Entreprise"}, nil)

	_, err := LoadStore(context.Background(), LoadOptions{Dir: dir, Workers: 1})
	require.Error(t, err)
	assert.Equal(t, apierrors.ErrTypeParsing, apierrors.TypeOf(err))
}

func TestLoadStore_Cancelled(t *testing.T) {
	dir := testutil.SampleSectors(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadStore(ctx, LoadOptions{Dir: dir, Workers: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStore_ColumnOrderMayDiffer(t *testing.T) {
	a := domain.NewSectorDataset("A", "a.csv", []string{"Entreprise", "x", "y"}, nil)
	b := domain.NewSectorDataset("B", "b.csv", []string{"Entreprise", "y", "x"}, nil)

	store, err := NewStore(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"Entreprise", "x", "y"}, store.Headers())
}

func TestNewStore_IdentifierColumnMustMatch(t *testing.T) {
	a := domain.NewSectorDataset("A", "a.csv", []string{"Entreprise", "x"}, nil)
	b := domain.NewSectorDataset("B", "b.csv", []string{"x", "Entreprise"}, nil)

	_, err := NewStore(a, b)
	assert.ErrorIs(t, err, apierrors.ErrSchemaMismatch)
}

func TestStore_Empty(t *testing.T) {
	store, err := NewStore()
	require.NoError(t, err)
	assert.Equal(t, "", store.Default())
	assert.Empty(t, store.Names())
}
