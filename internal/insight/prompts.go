package insight

import (
	"fmt"

	"github.com/dvloznov/sales-dashboard/internal/metrics"
)

// Prompt formats facts into the fixed summary request sent to the model.
func Prompt(f Facts) string {
	return fmt.Sprintf(
		"We have %d orders totaling %s from %s to %s. "+
			"Best-selling category: %s. Top state by revenue: %s. "+
			"Provide 3 concise, actionable business insights.",
		f.Orders,
		metrics.FormatAmount(f.TotalSales.InexactFloat64(), 0),
		f.Start,
		f.End,
		f.TopCategory,
		f.TopState,
	)
}
