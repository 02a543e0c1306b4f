package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/internal/files"
	"bvmtdash/pkg/contracts/domain"
)

// Store holds every loaded sector. It is built once at startup and read-only afterwards.
type Store struct {
	names   []string
	sets    map[string]*domain.SectorDataset
	headers []string
}

// LoadOptions configures LoadStore
type LoadOptions struct {
	Dir     string
	Workers int
	// Labels, when set, must cover every column of the shared schema
	Labels *LabelMap
	Logger *slog.Logger
}

// LoadStore discovers and parses every sector file in opts.Dir.
// Files are parsed concurrently, at most opts.Workers at a time.
func LoadStore(ctx context.Context, opts LoadOptions) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "sector_store"))

	start := time.Now()
	found, err := files.NewDiscovery(opts.Dir).FindSectorFiles(opts.Dir)
	if err != nil {
		return nil, apierrors.NewStorageError(fmt.Sprintf("list data directory %s", opts.Dir), err)
	}
	if len(found) == 0 {
		return nil, apierrors.NewStorageError(fmt.Sprintf("data directory %s", opts.Dir), apierrors.ErrNoSectorsFound).
			WithContext("dir", opts.Dir)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	datasets := make([]*domain.SectorDataset, len(found))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, fi := range found {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds, err := ParseSectorFile(fi.Path)
			if err != nil {
				return err
			}
			logger.DebugContext(gctx, "sector file parsed",
				slog.String("sector", ds.Name()),
				slog.String("file", fi.Name),
				slog.Int("companies", ds.Len()))
			datasets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store, err := NewStore(datasets...)
	if err != nil {
		return nil, err
	}

	if opts.Labels != nil {
		if err := opts.Labels.Validate(store.Headers()); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "sector data loaded",
		slog.Int("sectors", store.Len()),
		slog.String("dir", opts.Dir),
		slog.Duration("duration", time.Since(start)))
	return store, nil
}

// NewStore builds a store from parsed datasets. Sector names must be unique and
// every dataset must carry the same set of columns.
func NewStore(datasets ...*domain.SectorDataset) (*Store, error) {
	s := &Store{
		sets: make(map[string]*domain.SectorDataset, len(datasets)),
	}

	var first *domain.SectorDataset
	for _, ds := range datasets {
		if prev, dup := s.sets[ds.Name()]; dup {
			return nil, apierrors.NewConfigError(
				fmt.Sprintf("sector %q is defined by both %s and %s", ds.Name(), prev.Source(), ds.Source()),
				apierrors.ErrDuplicateName).WithContext("sector", ds.Name())
		}
		if first == nil {
			first = ds
			s.headers = ds.Headers()
		} else if !sameColumns(first.Headers(), ds.Headers()) {
			return nil, apierrors.NewConfigError(
				fmt.Sprintf("sector %q columns %q differ from sector %q columns %q",
					ds.Name(), ds.Headers(), first.Name(), first.Headers()),
				apierrors.ErrSchemaMismatch).WithContext("sector", ds.Name())
		}
		s.sets[ds.Name()] = ds
		s.names = append(s.names, ds.Name())
	}
	sort.Strings(s.names)
	return s, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) || a[0] != b[0] {
		return false
	}
	as, bs := slices.Clone(a), slices.Clone(b)
	sort.Strings(as)
	sort.Strings(bs)
	return slices.Equal(as, bs)
}

// Names returns the sector names in sorted order
func (s *Store) Names() []string {
	return slices.Clone(s.names)
}

// Get returns the dataset of a sector
func (s *Store) Get(name string) (*domain.SectorDataset, bool) {
	ds, ok := s.sets[name]
	return ds, ok
}

// Default returns the initially selected sector: the first name, or "" for an empty store
func (s *Store) Default() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[0]
}

// Len returns the number of sectors
func (s *Store) Len() int { return len(s.names) }

// Headers returns the columns shared by every sector
func (s *Store) Headers() []string { return slices.Clone(s.headers) }
