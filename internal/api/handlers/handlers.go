package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/dvloznov/sales-dashboard/internal/api/middleware"
	"github.com/dvloznov/sales-dashboard/internal/dashboard"
	"github.com/dvloznov/sales-dashboard/internal/export"
	"github.com/dvloznov/sales-dashboard/internal/insight"
	"github.com/dvloznov/sales-dashboard/internal/loader"
	"github.com/rs/zerolog"
)

// DatasetStore is the loaded-table cache the handlers read from.
// This interface enables mocking of the loader in tests.
type DatasetStore interface {
	Get(id string) (*loader.Entry, error)
	List() []*loader.Entry
	Load(ctx context.Context, source string) (*loader.Entry, error)
	LoadBytes(name string, data []byte) (*loader.Entry, error)
}

// Datasets resolves the dataset a request refers to. Requests without a
// dataset parameter use the default dataset loaded at startup.
type Datasets struct {
	store DatasetStore

	mu        sync.RWMutex
	defaultID string
}

// NewDatasets wraps store.
func NewDatasets(store DatasetStore) *Datasets {
	return &Datasets{store: store}
}

// SetDefault makes id the dataset used when a request names none.
func (d *Datasets) SetDefault(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.defaultID = id
}

// Default returns the default dataset id, or "" when none is loaded.
func (d *Datasets) Default() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.defaultID
}

// Entry returns the dataset named by the request's dataset parameter.
func (d *Datasets) Entry(r *http.Request) (*loader.Entry, error) {
	id := r.URL.Query().Get("dataset")
	if id == "" {
		id = d.Default()
	}
	if id == "" {
		return nil, errNoDataset
	}
	return d.store.Get(id)
}

var errNoDataset = errors.New("no dataset loaded; upload a sales report first")

// writeDataError maps loader, query and view errors to a JSON response.
func writeDataError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, errNoDataset):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, loader.ErrUnknownDataset):
		middleware.WriteError(w, http.StatusNotFound, "Dataset not found")
	case errors.Is(err, errBadQuery),
		errors.Is(err, dashboard.ErrInvalidOptions),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, loader.ErrUnsupportedSource):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, loader.ErrMalformedCSV), errors.Is(err, loader.ErrMissingColumns):
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, insight.ErrNoOrders):
		middleware.WriteError(w, http.StatusUnprocessableEntity, "No orders in the current selection")
	default:
		log.Error().Err(err).Msg("Request failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
