package filter

import (
	"cloud.google.com/go/civil"
	"github.com/dvloznov/sales-dashboard/internal/domain"
)

// Options are the selectable values of a loaded table. They are computed
// once per load and never from a filtered subset.
type Options struct {
	Categories  []string   `json:"categories"`
	Sizes       []string   `json:"sizes"`
	Fulfilments []string   `json:"fulfilments"`
	MinDate     civil.Date `json:"min_date"`
	MaxDate     civil.Date `json:"max_date"`
}

// OptionsOf collects the distinct values of table in first-seen order.
func OptionsOf(table *domain.Table) Options {
	opts := Options{
		Categories:  []string{},
		Sizes:       []string{},
		Fulfilments: []string{},
	}
	if table.Len() == 0 {
		return opts
	}

	seenCat := make(map[string]bool)
	seenSize := make(map[string]bool)
	seenFul := make(map[string]bool)

	opts.MinDate = table.Orders[0].Date
	opts.MaxDate = table.Orders[0].Date

	for _, o := range table.Orders {
		if !seenCat[o.Category] {
			seenCat[o.Category] = true
			opts.Categories = append(opts.Categories, o.Category)
		}
		if !seenSize[o.Size] {
			seenSize[o.Size] = true
			opts.Sizes = append(opts.Sizes, o.Size)
		}
		if !seenFul[o.Fulfilment] {
			seenFul[o.Fulfilment] = true
			opts.Fulfilments = append(opts.Fulfilments, o.Fulfilment)
		}
		if o.Date.Before(opts.MinDate) {
			opts.MinDate = o.Date
		}
		if o.Date.After(opts.MaxDate) {
			opts.MaxDate = o.Date
		}
	}

	return opts
}
