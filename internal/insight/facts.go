package insight

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/dvloznov/sales-dashboard/internal/metrics"
	"github.com/shopspring/decimal"
)

// Facts are the aggregates a narrative summary is written from.
type Facts struct {
	Orders      int             `json:"orders"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	Start       civil.Date      `json:"start"`
	End         civil.Date      `json:"end"`
	TopCategory string          `json:"top_category"`
	TopState    string          `json:"top_state"`
}

// FactsOf computes the facts for a working subset and its selected date
// range. The best-selling category is by quantity and the top state by
// revenue; ties go to the first encountered and null values never win.
func FactsOf(orders []*domain.Order, start, end civil.Date) (Facts, error) {
	if len(orders) == 0 {
		return Facts{}, fmt.Errorf("FactsOf: %w", ErrNoOrders)
	}

	kpis := metrics.Summarize(orders)
	topCategory := metrics.QuantityByCategory(orders, 1)
	topState := metrics.SalesByState(orders, 1)

	return Facts{
		Orders:      kpis.TotalOrders,
		TotalSales:  kpis.TotalSales,
		Start:       start,
		End:         end,
		TopCategory: firstKey(topCategory),
		TopState:    firstKey(topState),
	}, nil
}

// firstKey returns the leading group's key, or the placeholder when every
// key was null.
func firstKey(groups []metrics.Group) string {
	if len(groups) == 0 {
		return metrics.Placeholder
	}
	return groups[0].Key
}
