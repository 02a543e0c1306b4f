package http

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/internal/middleware"
	"bvmtdash/internal/services"
	api "bvmtdash/pkg/contracts/api/v1"
)

type sectorCtxKey struct{}

// SectorHandler serves sector selections and exports
type SectorHandler struct {
	service      SectorServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSectorHandler creates a new sector handler
func NewSectorHandler(service SectorServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SectorHandler {
	return &SectorHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "sector_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the sector routes, mounted under /api
func (h *SectorHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/dashboard/update", h.Update)
	r.Get("/sectors", h.ListSectors)

	r.Route("/sectors/{sector}", func(r chi.Router) {
		r.Use(h.SectorCtx)
		r.Get("/", h.GetSector)
		r.Get("/summary", h.GetSummary)
		r.Get("/chart.png", h.export(services.FormatPNG, "image/png", ".png"))
		r.Get("/export.csv", h.export(services.FormatCSV, "text/csv; charset=utf-8", ".csv"))
		r.Get("/export.xlsx", h.export(services.FormatXLSX,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"))
	})

	return r
}

// SectorCtx validates the {sector} URL parameter and stores it in the context
func (h *SectorHandler) SectorCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// chi matches on RawPath when it is set, leaving params escaped
		sector := chi.URLParam(r, "sector")
		if r.URL.RawPath != "" {
			if unescaped, err := url.PathUnescape(sector); err == nil {
				sector = unescaped
			}
		}

		if err := h.validator.Struct(api.SelectionRequest{Sector: sector}); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sectorCtxKey{}, sector)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sectorFrom(ctx context.Context) string {
	s, _ := ctx.Value(sectorCtxKey{}).(string)
	return s
}

// Update handles POST /api/dashboard/update: one selection in, figure and table out
func (h *SectorHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req api.SelectionRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Select(r.Context(), req.Sector)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.NewUpdateResponse(view))
}

// ListSectors handles GET /api/sectors
func (h *SectorHandler) ListSectors(w http.ResponseWriter, r *http.Request) {
	names, def := h.service.Sectors(r.Context())
	if names == nil {
		names = []string{}
	}
	render.JSON(w, r, api.SectorsResponse{Sectors: names, Default: def})
}

// GetSector handles GET /api/sectors/{sector}
func (h *SectorHandler) GetSector(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Select(r.Context(), sectorFrom(r.Context()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// GetSummary handles GET /api/sectors/{sector}/summary
func (h *SectorHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), sectorFrom(r.Context()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// export buffers the whole file so a failure can still produce a problem response
func (h *SectorHandler) export(format, contentType, ext string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sector := sectorFrom(r.Context())

		var buf bytes.Buffer
		if err := h.service.Export(r.Context(), sector, format, &buf); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		if format != services.FormatPNG {
			w.Header().Set("Content-Disposition",
				mime.FormatMediaType("attachment", map[string]string{"filename": sector + ext}))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.WarnContext(r.Context(), "export write interrupted",
				slog.String("sector", sector),
				slog.String("format", format),
				slog.String("error", err.Error()))
		}
	}
}
