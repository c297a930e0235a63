package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dvloznov/sales-dashboard/internal/api/middleware"
	"github.com/dvloznov/sales-dashboard/internal/insight"
	"github.com/dvloznov/sales-dashboard/internal/logger"
	"github.com/rs/zerolog"
)

// Summarizer produces a narrative summary for a set of facts.
// This interface enables mocking of the insight service in tests.
type Summarizer interface {
	Summarize(ctx context.Context, f insight.Facts) (*insight.Result, error)
	Pending(prompt string) bool
	Cached(prompt string) bool
}

// InsightsHandler handles the on-demand summary endpoint.
type InsightsHandler struct {
	datasets   *Datasets
	summarizer Summarizer
	log        zerolog.Logger
}

// NewInsightsHandler creates a new insights handler. A nil summarizer means
// no credential is configured and every request is refused.
func NewInsightsHandler(datasets *Datasets, summarizer Summarizer, log zerolog.Logger) *InsightsHandler {
	return &InsightsHandler{
		datasets:   datasets,
		summarizer: summarizer,
		log:        log,
	}
}

// Generate handles POST /api/insights
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)

	if h.summarizer == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Insights are disabled: no API key configured")
		return
	}

	facts, err := h.facts(r)
	if err != nil {
		writeDataError(w, log, err)
		return
	}

	result, err := h.summarizer.Summarize(r.Context(), facts)
	if err != nil {
		log.Warn().Err(err).Int("orders", facts.Orders).Msg("Insight request failed")
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			middleware.WriteError(w, http.StatusGatewayTimeout, "Insight service timed out")
		case errors.Is(err, insight.ErrUnavailable):
			middleware.WriteError(w, http.StatusBadGateway, "Insight service unavailable")
		default:
			writeDataError(w, log, err)
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"facts":   facts,
		"insight": result,
	})
}

// Status handles GET /api/insights/status. It reports whether the summary
// for the current selection is stored or being generated, without
// requesting one.
func (h *InsightsHandler) Status(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)

	if h.summarizer == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Insights are disabled: no API key configured")
		return
	}

	facts, err := h.facts(r)
	if err != nil {
		writeDataError(w, log, err)
		return
	}

	prompt := insight.Prompt(facts)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"prompt":  prompt,
		"pending": h.summarizer.Pending(prompt),
		"cached":  h.summarizer.Cached(prompt),
	})
}

func (h *InsightsHandler) facts(r *http.Request) (insight.Facts, error) {
	_, view, err := buildView(h.datasets, r)
	if err != nil {
		return insight.Facts{}, err
	}
	return insight.FactsOf(view.Orders(), *view.Filters.Start, *view.Filters.End)
}
