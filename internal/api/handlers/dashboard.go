package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dvloznov/sales-dashboard/internal/api/middleware"
	"github.com/dvloznov/sales-dashboard/internal/dashboard"
	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/dvloznov/sales-dashboard/internal/export"
	"github.com/dvloznov/sales-dashboard/internal/filter"
	"github.com/dvloznov/sales-dashboard/internal/loader"
	"github.com/dvloznov/sales-dashboard/internal/logger"
	"github.com/rs/zerolog"
)

// DashboardHandler serves the filtered views of a dataset.
type DashboardHandler struct {
	datasets *Datasets
	log      zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(datasets *Datasets, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		datasets: datasets,
		log:      log,
	}
}

// buildView runs the filter pipeline for the request's dataset and state.
func buildView(datasets *Datasets, r *http.Request) (*loader.Entry, *dashboard.View, error) {
	entry, err := datasets.Entry(r)
	if err != nil {
		return nil, nil, err
	}

	q := r.URL.Query()
	state, err := ParseState(q)
	if err != nil {
		return nil, nil, err
	}
	opts, err := ParseViewOptions(q)
	if err != nil {
		return nil, nil, err
	}

	view, err := dashboard.Build(entry, state, opts)
	if err != nil {
		return nil, nil, err
	}
	return entry, view, nil
}

// Dashboard handles GET /api/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	_, view, err := buildView(h.datasets, r)
	if err != nil {
		writeDataError(w, logger.FromContext(r.Context(), h.log), err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, view)
}

// Search handles GET /api/orders/search
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	_, view, err := buildView(h.datasets, r)
	if err != nil {
		writeDataError(w, logger.FromContext(r.Context(), h.log), err)
		return
	}

	query := r.URL.Query().Get("q")
	orders := filter.Search(view.Orders(), query)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":  query,
		"orders": orders,
		"count":  len(orders),
	})
}

// Export handles GET /api/export
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeDataError(w, log, err)
		return
	}

	entry, view, err := buildView(h.datasets, r)
	if err != nil {
		writeDataError(w, log, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, tableHeader(entry.Table), view.Orders()); err != nil {
		writeDataError(w, log, fmt.Errorf("Export: %w", err))
		return
	}

	log.Info().
		Str("dataset_id", entry.ID).
		Str("format", string(format)).
		Int("rows", len(view.Orders())).
		Msg("Exported filtered orders")

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// tableHeader is the export header of an entry; an empty table has the
// schema columns only.
func tableHeader(t *domain.Table) []string {
	if t == nil || len(t.Header) == 0 {
		return domain.RequiredColumns
	}
	return t.Header
}
