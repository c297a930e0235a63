package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/sales-dashboard/internal/dashboard"
	"github.com/dvloznov/sales-dashboard/internal/filter"
)

var errBadQuery = errors.New("invalid query parameter")

// ParseState reads the filter selection from query parameters.
//
// An absent category, size or fulfilment parameter leaves the selection
// unset (every option). A parameter given only with empty values, such as
// "category=", is an explicit empty selection.
func ParseState(q url.Values) (filter.State, error) {
	var s filter.State

	start, err := parseDateParam(q, "start")
	if err != nil {
		return s, err
	}
	end, err := parseDateParam(q, "end")
	if err != nil {
		return s, err
	}
	s.Start, s.End = start, end

	s.Categories = selection(q, "category")
	s.Sizes = selection(q, "size")
	s.Fulfilments = selection(q, "fulfilment")

	s.B2BOnly, err = parseBoolParam(q, "b2b_only", false)
	if err != nil {
		return s, err
	}
	return s, nil
}

// ParseViewOptions reads the top-N controls and section toggles. Missing
// parameters take their defaults.
func ParseViewOptions(q url.Values) (dashboard.ViewOptions, error) {
	opts := dashboard.DefaultViewOptions()

	var err error
	if opts.TopStates, err = parseIntParam(q, "top_states", opts.TopStates); err != nil {
		return opts, err
	}
	if opts.TopCities, err = parseIntParam(q, "top_cities", opts.TopCities); err != nil {
		return opts, err
	}

	toggles := []struct {
		name string
		dst  *bool
	}{
		{"show_overview", &opts.Sections.Overview},
		{"show_products", &opts.Sections.Products},
		{"show_fulfilment", &opts.Sections.Fulfilment},
		{"show_segments", &opts.Sections.Segments},
		{"show_geo", &opts.Sections.Geography},
	}
	for _, t := range toggles {
		if *t.dst, err = parseBoolParam(q, t.name, *t.dst); err != nil {
			return opts, err
		}
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func selection(q url.Values, key string) []string {
	values, ok := q[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDateParam(q url.Values, key string) (*civil.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", errBadQuery, key, v)
	}
	return &d, nil
}

func parseBoolParam(q url.Values, key string, def bool) (bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be a boolean, got %q", errBadQuery, key, v)
	}
	return b, nil
}

func parseIntParam(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be an integer, got %q", errBadQuery, key, v)
	}
	return n, nil
}
