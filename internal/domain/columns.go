package domain

// Source column names of the sales report.
const (
	ColOrderID    = "Order ID"
	ColCategory   = "Category"
	ColSize       = "Size"
	ColQuantity   = "Qty"
	ColAmount     = "Amount"
	ColCurrency   = "currency"
	ColDate       = "Date"
	ColFulfilment = "Fulfilment"
	ColB2B        = "B2B"
	ColShipState  = "ship-state"
	ColShipCity   = "ship-city"
	ColStatus     = "Status"
)

// RequiredColumns lists the columns every source must provide.
var RequiredColumns = []string{
	ColOrderID,
	ColCategory,
	ColSize,
	ColQuantity,
	ColAmount,
	ColCurrency,
	ColDate,
	ColFulfilment,
	ColB2B,
	ColShipState,
	ColShipCity,
	ColStatus,
}

// LegacyColumns are dropped at load time when present.
var LegacyColumns = []string{"New", "PendingS"}
