package domain

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Order represents one retained row of the sales report.
// It is produced by the loader and never mutated afterwards.
type Order struct {
	OrderID    string          `json:"order_id"`   // from "Order ID"
	Category   string          `json:"category"`   // from "Category"
	Size       string          `json:"size"`       // from "Size"
	Quantity   int64           `json:"quantity"`   // from "Qty" (0 when blank or unparseable)
	Amount     decimal.Decimal `json:"amount"`     // from "Amount", never null
	Currency   string          `json:"currency"`   // from "currency", never null
	Date       civil.Date      `json:"date"`       // from "Date", time of day dropped
	Fulfilment string          `json:"fulfilment"` // from "Fulfilment"
	B2B        bool            `json:"b2b"`        // from "B2B"
	ShipState  string          `json:"ship_state"` // from "ship-state"
	ShipCity   string          `json:"ship_city"`  // from "ship-city"
	Status     string          `json:"status"`     // from "Status"

	// Raw holds the row's cells in Table.Header order so the row can be
	// written back exactly as it was loaded.
	Raw []string `json:"-"`
}

// Month returns the order's month bucket, e.g. "2022-04".
func (o *Order) Month() string {
	return fmt.Sprintf("%04d-%02d", o.Date.Year, int(o.Date.Month))
}

// Table is an immutable loaded dataset.
type Table struct {
	// Header is the source header with legacy columns removed.
	Header []string
	Orders []*Order
	// Dropped counts rows excluded for a null amount, null currency or
	// an unparseable date.
	Dropped int
}

// Len returns the number of retained orders.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Orders)
}
