package dashboard

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/dvloznov/sales-dashboard/internal/filter"
	"github.com/dvloznov/sales-dashboard/internal/loader"
	"github.com/dvloznov/sales-dashboard/internal/metrics"
)

// Sections toggles the optional dashboard panels.
type Sections struct {
	Overview   bool `json:"overview"`
	Products   bool `json:"products"`
	Fulfilment bool `json:"fulfilment"`
	Segments   bool `json:"segments"`
	Geography  bool `json:"geography"`
}

// DefaultSections shows the overview and product panels only.
func DefaultSections() Sections {
	return Sections{Overview: true, Products: true}
}

// ViewOptions are the presentation controls that do not affect the subset.
type ViewOptions struct {
	TopStates int      `json:"top_states"`
	TopCities int      `json:"top_cities"`
	Sections  Sections `json:"sections"`
}

// DefaultViewOptions returns the initial controls of a fresh session.
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		TopStates: metrics.DefaultTopN,
		TopCities: metrics.DefaultTopN,
		Sections:  DefaultSections(),
	}
}

// Validate checks the top-N controls are within the slider range.
func (o ViewOptions) Validate() error {
	if o.TopStates < metrics.MinTopN || o.TopStates > metrics.MaxTopN {
		return fmt.Errorf("Validate: %w: top_states must be between %d and %d, got %d",
			ErrInvalidOptions, metrics.MinTopN, metrics.MaxTopN, o.TopStates)
	}
	if o.TopCities < metrics.MinTopN || o.TopCities > metrics.MaxTopN {
		return fmt.Errorf("Validate: %w: top_cities must be between %d and %d, got %d",
			ErrInvalidOptions, metrics.MinTopN, metrics.MaxTopN, o.TopCities)
	}
	return nil
}

// Overview is the monthly sales trend.
type Overview struct {
	SalesByMonth []metrics.Group `json:"sales_by_month"`
}

// Products holds the category and size rankings.
type Products struct {
	QuantityByCategory []metrics.Group `json:"quantity_by_category"`
	CountBySize        []metrics.Group `json:"count_by_size"`
}

// Fulfilment holds the fulfilment channel breakdowns.
type Fulfilment struct {
	CountByFulfilment []metrics.Group     `json:"count_by_fulfilment"`
	CountByStatus     []metrics.PairGroup `json:"count_by_status"`
}

// Segments holds revenue split by customer segment.
type Segments struct {
	SalesBySegment []metrics.Group `json:"sales_by_segment"`
}

// Geography holds the state and city rankings.
type Geography struct {
	SalesByState []metrics.Group `json:"sales_by_state"`
	CountByCity  []metrics.Group `json:"count_by_city"`
}

// View is everything rendered for one filter state. Hidden sections are nil.
type View struct {
	DatasetID string         `json:"dataset_id"`
	Summary   string         `json:"summary"`
	Filters   filter.State   `json:"filters"`
	Options   filter.Options `json:"options"`
	KPIs      metrics.KPIs   `json:"kpis"`
	Controls  ViewOptions    `json:"controls"`

	Overview   *Overview   `json:"overview,omitempty"`
	Products   *Products   `json:"products,omitempty"`
	Fulfilment *Fulfilment `json:"fulfilment,omitempty"`
	Segments   *Segments   `json:"segments,omitempty"`
	Geography  *Geography  `json:"geography,omitempty"`

	orders []*domain.Order
}

// Orders returns the working subset the view was computed from.
func (v *View) Orders() []*domain.Order {
	return v.orders
}

// Build filters the dataset by state and computes the visible panels.
// It is a pure function of its inputs.
func Build(entry *loader.Entry, state filter.State, opts ViewOptions) (*View, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	resolved := state.Resolve(entry.Options)
	orders := filter.Apply(entry.Table, entry.Options, resolved)

	v := &View{
		DatasetID: entry.ID,
		Summary:   SummaryLine(len(orders), *resolved.Start, *resolved.End),
		Filters:   resolved,
		Options:   entry.Options,
		KPIs:      metrics.Summarize(orders),
		Controls:  opts,
		orders:    orders,
	}

	s := opts.Sections
	if s.Overview {
		v.Overview = &Overview{SalesByMonth: metrics.SalesByMonth(orders)}
	}
	if s.Products {
		v.Products = &Products{
			QuantityByCategory: metrics.QuantityByCategory(orders, metrics.DefaultTopK),
			CountBySize:        metrics.CountBySize(orders, metrics.DefaultTopK),
		}
	}
	if s.Fulfilment {
		v.Fulfilment = &Fulfilment{
			CountByFulfilment: metrics.CountByFulfilment(orders),
			CountByStatus:     metrics.CountByFulfilmentStatus(orders),
		}
	}
	if s.Segments {
		v.Segments = &Segments{SalesBySegment: metrics.SalesBySegment(orders)}
	}
	if s.Geography {
		v.Geography = &Geography{
			SalesByState: metrics.SalesByState(orders, opts.TopStates),
			CountByCity:  metrics.CountByCity(orders, opts.TopCities),
		}
	}

	return v, nil
}

// SummaryLine describes the size and date range of the working subset.
func SummaryLine(n int, start, end civil.Date) string {
	return fmt.Sprintf("Showing %s orders from %s to %s", metrics.FormatCount(int64(n)), start, end)
}
