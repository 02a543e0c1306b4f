package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	apierrors "bvmtdash/internal/errors"
	"bvmtdash/pkg/contracts/domain"
)

// IndexTemplate is the page template file name inside the frontend filesystem
const IndexTemplate = "index.html.tmpl"

// Page texts
const (
	PageTitle    = "Dashboard"
	PageHeading  = "Dashboard des entreprises par secteur dans la bourse de Tunis"
	TableHeading = "Tableau des entreprises par secteur"
	ChartHeading = "Graphique des entreprises par secteur"
)

// DashboardHandler renders the dashboard page with the default sector already drawn
type DashboardHandler struct {
	tmpl         *template.Template
	service      SectorServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

type pageData struct {
	Title        string
	Heading      string
	TableHeading string
	ChartHeading string
	Sectors      []string
	Selected     string
	InitialView  template.JS
	InitialError string
}

// NewDashboardHandler parses the page template from frontend
func NewDashboardHandler(frontend fs.FS, service SectorServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) (*DashboardHandler, error) {
	tmpl, err := template.ParseFS(frontend, IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	return &DashboardHandler{
		tmpl:         tmpl,
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}, nil
}

// ServeHTTP handles GET /
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sectors, selected := h.service.Sectors(r.Context())

	// A sector that fails to transform leaves the page usable with an empty view
	view := domain.EmptySectorView()
	var initialError string
	if selected != "" {
		v, err := h.service.Select(r.Context(), selected)
		if err != nil {
			h.logger.WarnContext(r.Context(), "initial sector unavailable",
				slog.String("sector", selected),
				slog.String("error", err.Error()))
			initialError = h.errorHandler.ErrorToProblem(err, r).Detail
		} else {
			view = v
		}
	}

	initial, err := json.Marshal(view)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, pageData{
		Title:        PageTitle,
		Heading:      PageHeading,
		TableHeading: TableHeading,
		ChartHeading: ChartHeading,
		Sectors:      sectors,
		Selected:     selected,
		InitialView:  template.JS(initial),
		InitialError: initialError,
	}); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
