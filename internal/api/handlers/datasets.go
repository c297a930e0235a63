package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/dvloznov/sales-dashboard/internal/api/middleware"
	"github.com/dvloznov/sales-dashboard/internal/loader"
	"github.com/dvloznov/sales-dashboard/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// DatasetsHandler handles dataset upload and lookup endpoints.
type DatasetsHandler struct {
	datasets  *Datasets
	maxUpload int64
	log       zerolog.Logger
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(datasets *Datasets, maxUpload int64, log zerolog.Logger) *DatasetsHandler {
	return &DatasetsHandler{
		datasets:  datasets,
		maxUpload: maxUpload,
		log:       log,
	}
}

// Upload handles POST /api/datasets.
//
// A multipart body loads the "file" part; a JSON body {"source": "..."}
// loads a gs:// object or a bq:// table. Identical content or sources return
// the already loaded dataset.
func (h *DatasetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		entry *loader.Entry
		err   error
	)
	switch mediaType {
	case "multipart/form-data":
		entry, err = h.uploadFile(w, r)
	case "application/json":
		entry, err = h.loadSource(r)
	default:
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "Expected multipart/form-data or application/json")
		return
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the size limit")
			return
		}
		writeDataError(w, log, err)
		return
	}

	if h.datasets.Default() == "" {
		h.datasets.SetDefault(entry.ID)
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"dataset": entry,
	})
}

func (h *DatasetsHandler) uploadFile(w http.ResponseWriter, r *http.Request) (*loader.Entry, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: multipart field \"file\" is required", errBadQuery)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("uploadFile: read %s: %w", header.Filename, err)
	}

	return h.datasets.store.LoadBytes(header.Filename, data)
}

func (h *DatasetsHandler) loadSource(r *http.Request) (*loader.Entry, error) {
	var req struct {
		Source string `json:"source"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", errBadQuery)
	}
	if !loader.IsRemote(req.Source) {
		return nil, fmt.Errorf("%w: source must be a gs:// object or a bq:// table", errBadQuery)
	}
	return h.datasets.store.Load(r.Context(), req.Source)
}

// List handles GET /api/datasets.
func (h *DatasetsHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.datasets.store.List()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": entries,
		"count":    len(entries),
		"default":  h.datasets.Default(),
	})
}

// Options handles GET /api/datasets/{id}/options.
func (h *DatasetsHandler) Options(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid dataset id")
		return
	}

	entry, err := h.datasets.store.Get(id)
	if err != nil {
		writeDataError(w, logger.FromContext(r.Context(), h.log), err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, entry.Options)
}
