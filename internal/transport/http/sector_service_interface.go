package http

import (
	"context"
	"io"

	"bvmtdash/pkg/contracts/domain"
)

// SectorServiceInterface defines the sector operations the handlers need
type SectorServiceInterface interface {
	Sectors(ctx context.Context) ([]string, string)
	Select(ctx context.Context, sector string) (domain.SectorView, error)
	Summary(ctx context.Context, sector string) (domain.SectorSummary, error)
	Export(ctx context.Context, sector, format string, out io.Writer) error
}
