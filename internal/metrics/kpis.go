package metrics

import (
	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is displayed for a metric that is undefined, such as the mean
// of an empty selection.
const Placeholder = "N/A"

// CurrencySymbol prefixes displayed amounts. The sales report is in INR.
const CurrencySymbol = "₹"

// KPIs are the scalar metrics of a working subset.
type KPIs struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalOrders   int             `json:"total_orders"`
	TotalQuantity int64           `json:"total_quantity"`

	// AverageOrder and MedianOrder are nil when the subset is empty.
	AverageOrder *float64 `json:"average_order_value"`
	MedianOrder  *float64 `json:"median_order_value"`

	Display Display `json:"display"`
}

// Display holds the KPIs formatted for the presentation layer.
type Display struct {
	TotalSales   string `json:"total_sales"`
	TotalOrders  string `json:"total_orders"`
	AverageOrder string `json:"average_order_value"`
	MedianOrder  string `json:"median_order_value"`
}

var printer = message.NewPrinter(language.English)

// Summarize computes the KPIs of orders. An empty subset yields zero sums and
// the placeholder for the mean and median.
func Summarize(orders []*domain.Order) KPIs {
	k := KPIs{
		TotalSales:  decimal.Zero,
		TotalOrders: len(orders),
	}

	amounts := make(stats.Float64Data, 0, len(orders))
	for _, o := range orders {
		k.TotalSales = k.TotalSales.Add(o.Amount)
		k.TotalQuantity += o.Quantity
		amounts = append(amounts, o.Amount.InexactFloat64())
	}

	k.AverageOrder = definedOrNil(stats.Mean(amounts))
	k.MedianOrder = definedOrNil(stats.Median(amounts))

	k.Display = Display{
		TotalSales:   FormatAmount(k.TotalSales.InexactFloat64(), 0),
		TotalOrders:  FormatCount(int64(k.TotalOrders)),
		AverageOrder: formatOptional(k.AverageOrder),
		MedianOrder:  formatOptional(k.MedianOrder),
	}
	return k
}

// definedOrNil drops the value when stats reports an error, which for a
// mean or median only happens on empty input.
func definedOrNil(v float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return &v
}

func formatOptional(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return FormatAmount(*v, 2)
}

// FormatAmount renders v with thousands separators and the currency symbol,
// e.g. ₹1,234,568.
func FormatAmount(v float64, decimals int) string {
	return CurrencySymbol + FormatNumber(v, decimals)
}

// FormatNumber renders v with thousands separators and either no decimals
// (decimals <= 0) or two.
func FormatNumber(v float64, decimals int) string {
	if decimals <= 0 {
		return printer.Sprintf("%.0f", v)
	}
	return printer.Sprintf("%.2f", v)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}
