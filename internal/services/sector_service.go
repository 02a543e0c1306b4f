package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/internal/exporter"
	"bvmtdash/internal/infrastructure"
	"bvmtdash/pkg/contracts/domain"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPNG  = "png"
)

// SectorCatalog lists the loaded sectors
type SectorCatalog interface {
	Names() []string
	Default() string
}

// SectorTransformer builds sector views from loaded data
type SectorTransformer interface {
	Transform(sector string) (domain.SectorView, error)
	Melt(sector string) ([]domain.MeltedRow, error)
	Summarize(sector string) (domain.SectorSummary, error)
}

// SectorService serves sector selections and exports
type SectorService struct {
	catalog     SectorCatalog
	transformer SectorTransformer
	csv         *exporter.CSVWriter
	metrics     *infrastructure.DashboardMetrics
	tracer      trace.Tracer
	logger      *slog.Logger
}

// SectorServiceOption customizes a SectorService
type SectorServiceOption func(*SectorService)

// WithMetrics records selections and exports on m
func WithMetrics(m *infrastructure.DashboardMetrics) SectorServiceOption {
	return func(s *SectorService) { s.metrics = m }
}

// WithTracer wraps each operation in a span
func WithTracer(t trace.Tracer) SectorServiceOption {
	return func(s *SectorService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewSectorService creates a sector service
func NewSectorService(catalog SectorCatalog, transformer SectorTransformer, logger *slog.Logger, opts ...SectorServiceOption) *SectorService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "sector_service")

	s := &SectorService{
		catalog:     catalog,
		transformer: transformer,
		csv:         exporter.NewCSVWriter(logger),
		tracer:      noop.NewTracerProvider().Tracer("sector_service"),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("sector service initialized",
		slog.Int("sectors", len(catalog.Names())),
		slog.String("default_sector", catalog.Default()))
	return s
}

// Sectors returns the selectable sector names and the initial selection
func (s *SectorService) Sectors(ctx context.Context) ([]string, string) {
	return s.catalog.Names(), s.catalog.Default()
}

// Select builds the chart and table of a sector. An empty sector yields the empty view.
func (s *SectorService) Select(ctx context.Context, sector string) (domain.SectorView, error) {
	ctx, span := s.tracer.Start(ctx, "sector.select", trace.WithAttributes(attribute.String("sector", sector)))
	defer span.End()

	if sector == "" {
		s.logger.DebugContext(ctx, "empty selection")
		return domain.EmptySectorView(), nil
	}

	start := time.Now()
	view, err := s.transformer.Transform(sector)
	duration := time.Since(start)

	s.metrics.RecordTransform(ctx, sector, duration, errorKind(err))
	if err != nil {
		s.logFailure(ctx, "sector selection failed", sector, err)
		return domain.SectorView{}, err
	}

	infrastructure.SetSpanAttributes(ctx,
		attribute.Int("companies", len(view.Rows)),
		attribute.Int("series", view.Figure.SeriesCount()))
	s.logger.DebugContext(ctx, "sector selected",
		slog.String("sector", sector),
		slog.Int("companies", len(view.Rows)),
		slog.Duration("duration", duration))
	return view, nil
}

// Summary returns per-metric statistics of a sector
func (s *SectorService) Summary(ctx context.Context, sector string) (domain.SectorSummary, error) {
	ctx, span := s.tracer.Start(ctx, "sector.summary", trace.WithAttributes(attribute.String("sector", sector)))
	defer span.End()

	if sector == "" {
		return domain.SectorSummary{}, s.noSelection()
	}

	summary, err := s.transformer.Summarize(sector)
	if err != nil {
		s.logFailure(ctx, "sector summary failed", sector, err)
		return domain.SectorSummary{}, err
	}
	return summary, nil
}

// Export writes a sector to out in the given format (csv, xlsx or png)
func (s *SectorService) Export(ctx context.Context, sector, format string, out io.Writer) error {
	ctx, span := s.tracer.Start(ctx, "sector.export", trace.WithAttributes(
		attribute.String("sector", sector),
		attribute.String("format", format)))
	defer span.End()

	if sector == "" {
		return s.noSelection()
	}

	var err error
	switch format {
	case FormatCSV:
		err = s.exportCSV(sector, out)
	case FormatXLSX:
		err = s.exportXLSX(sector, out)
	case FormatPNG:
		err = s.exportChart(sector, out)
	default:
		err = apierrors.NewAppError(apierrors.ErrTypeValidation, fmt.Sprintf("format %q", format), ErrUnknownFormat)
	}
	if err != nil {
		s.logFailure(ctx, "sector export failed", sector, err, slog.String("format", format))
		return err
	}

	s.metrics.RecordExport(ctx, sector, format)
	s.logger.InfoContext(ctx, "sector exported",
		slog.String("sector", sector),
		slog.String("format", format))
	return nil
}

func (s *SectorService) exportCSV(sector string, out io.Writer) error {
	view, err := s.transformer.Transform(sector)
	if err != nil {
		return err
	}
	melted, err := s.transformer.Melt(sector)
	if err != nil {
		return err
	}
	return s.csv.WriteMelted(out, idTitle(view), melted)
}

func (s *SectorService) exportXLSX(sector string, out io.Writer) error {
	view, err := s.transformer.Transform(sector)
	if err != nil {
		return err
	}
	return exporter.WriteTableXLSX(out, sector, view.Columns, view.Rows)
}

func (s *SectorService) exportChart(sector string, out io.Writer) error {
	view, err := s.transformer.Transform(sector)
	if err != nil {
		return err
	}
	opts := exporter.DefaultChartOptions()
	opts.Title = sector
	return exporter.WriteChartPNG(out, view.Figure, opts)
}

func (s *SectorService) noSelection() error {
	return apierrors.NewAppError(apierrors.ErrTypeValidation, "sector is required", ErrNoSectorSelected)
}

func (s *SectorService) logFailure(ctx context.Context, msg, sector string, err error, attrs ...slog.Attr) {
	infrastructure.RecordError(ctx, err)

	level := slog.LevelError
	switch apierrors.TypeOf(err) {
	case apierrors.ErrTypeLookup, apierrors.ErrTypeValidation:
		level = slog.LevelWarn
	}
	attrs = append(attrs,
		slog.String("error", err.Error()),
		slog.String("error_type", string(apierrors.TypeOf(err))))
	infrastructure.WithSector(s.logger, sector).LogAttrs(ctx, level, msg, attrs...)
}

// idTitle is the display title of the identifier column
func idTitle(view domain.SectorView) string {
	if len(view.Columns) == 0 {
		return ""
	}
	return view.Columns[0].Name
}

// errorKind labels a transform failure for metrics
func errorKind(err error) string {
	if err == nil {
		return ""
	}
	if t := apierrors.TypeOf(err); t != "" {
		return string(t)
	}
	return "unknown"
}
