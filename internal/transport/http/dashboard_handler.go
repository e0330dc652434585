package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "qoedash/internal/errors"
	"qoedash/internal/exporter"
	"qoedash/internal/middleware"
	"qoedash/pkg/contracts/domain"
)

// DashboardHandler serves the derived views and exports of a dataset
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Mount registers the view routes on a router scoped to /{id}
func (h *DashboardHandler) Mount(r chi.Router) {
	r.Get("/options", h.Options)
	r.Get("/records", h.Records)
	r.Get("/charts", h.Charts)
	r.Get("/charts/{chart}", h.ChartImage)
	r.Get("/map", h.Map)
	r.Get("/comparison", h.Comparison)
	r.Get("/profile", h.Profile)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/export/comparison.xlsx", h.ExportComparison)
	r.Get("/export/observations.csv", h.ExportObservations)
}

// query parses and validates the selection, writing the error response on failure
func (h *DashboardHandler) query(w http.ResponseWriter, r *http.Request) (dashboardQuery, bool) {
	q, err := parseDashboardQuery(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return q, false
	}
	return q, true
}

// Options handles GET /api/datasets/{id}/options
func (h *DashboardHandler) Options(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	opts, err := h.service.Options(r.Context(), chi.URLParam(r, "id"), q.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, opts)
}

// Records handles GET /api/datasets/{id}/records
func (h *DashboardHandler) Records(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	page, err := h.service.Records(r.Context(), chi.URLParam(r, "id"), q.Query(), q.Limit, q.Offset)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

// Charts handles GET /api/datasets/{id}/charts
func (h *DashboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	view, err := h.service.Charts(r.Context(), chi.URLParam(r, "id"), q.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// ChartImage handles GET /api/datasets/{id}/charts/{category}.{svg|png}
func (h *DashboardHandler) ChartImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chart")
	ext := path.Ext(name)

	category, ok := domain.CategoryFromSlug(strings.TrimSuffix(name, ext))
	if !ok {
		h.errorHandler.HandleError(w, r, fmt.Errorf("%w: %s", apierrors.ErrUnknownCategory, name))
		return
	}
	format, err := exporter.ParseChartFormat(ext)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("chart", err.Error()))
		return
	}

	q, ok := h.query(w, r)
	if !ok {
		return
	}
	lf, err := h.service.Chart(r.Context(), chi.URLParam(r, "id"), q.Query(), category)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.RenderChart(&buf, lf, h.service.Palette(), format); err != nil {
		if errors.Is(err, exporter.ErrNoChartData) || errors.Is(err, exporter.ErrNonNumericChart) {
			h.errorHandler.HandleError(w, r, apierrors.ChartUnavailable(err))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("render chart", err).
			WithContext("category", string(category)).
			WithContext("format", string(format)))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// Map handles GET /api/datasets/{id}/map
func (h *DashboardHandler) Map(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	m, err := h.service.Map(r.Context(), chi.URLParam(r, "id"), q.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

// Comparison handles GET /api/datasets/{id}/comparison
func (h *DashboardHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	view, err := h.service.Comparison(r.Context(), chi.URLParam(r, "id"), q.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// Profile handles GET /api/datasets/{id}/profile
func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	view, err := h.service.Profile(r.Context(), chi.URLParam(r, "id"), q.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// Dashboard handles GET /api/datasets/{id}/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	view, err := h.service.Dashboard(r.Context(), chi.URLParam(r, "id"), q.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

// ExportComparison handles GET /api/datasets/{id}/export/comparison.xlsx
func (h *DashboardHandler) ExportComparison(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	view, err := h.service.Comparison(r.Context(), chi.URLParam(r, "id"), q.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteComparisonWorkbook(&buf, view.Route, view.Static); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("comparison workbook", err).
			WithContext("dataset_id", chi.URLParam(r, "id")))
		return
	}
	h.attachment(w, "comparison.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportObservations handles GET /api/datasets/{id}/export/observations.csv
func (h *DashboardHandler) ExportObservations(w http.ResponseWriter, r *http.Request) {
	q, ok := h.query(w, r)
	if !ok {
		return
	}
	view, err := h.service.Charts(r.Context(), chi.URLParam(r, "id"), q.Query())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteObservations(&buf, exporter.WriteOptions{BOMPrefix: true}, view.Route, view.Static); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("observations csv", err).
			WithContext("dataset_id", chi.URLParam(r, "id")))
		return
	}
	h.attachment(w, "observations.csv", "text/csv; charset=utf-8", buf.Bytes())
}

func (h *DashboardHandler) attachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}
