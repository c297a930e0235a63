package testutil

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Header is the column layout used by fixtures. It mirrors the sales report,
// including the extra columns the loader carries through untouched.
var Header = []string{
	"index", "Order ID", "Date", "Status", "Fulfilment", "Sales Channel",
	"Category", "Size", "Qty", "currency", "Amount",
	"ship-city", "ship-state", "B2B",
}

// Row is one fixture order. Date is written as given; use ISO dates.
type Row struct {
	ID         string
	Date       string
	Status     string
	Fulfilment string
	Category   string
	Size       string
	Qty        int
	Currency   string
	Amount     string
	City       string
	State      string
	B2B        bool
}

func (r Row) cells(i int) []string {
	currency := r.Currency
	if currency == "" {
		currency = "INR"
	}
	return []string{
		strconv.Itoa(i), r.ID, r.Date, r.Status, r.Fulfilment, "Amazon.in",
		r.Category, r.Size, strconv.Itoa(r.Qty), currency, r.Amount,
		r.City, r.State, strconv.FormatBool(r.B2B),
	}
}

// CSV renders rows as a sales report with Header.
func CSV(t testing.TB, rows ...Row) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, r := range rows {
		if err := w.Write(r.cells(i)); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush csv: %v", err)
	}
	return buf.Bytes()
}

// Table builds a loaded table directly from rows, bypassing the CSV reader.
func Table(t testing.TB, rows ...Row) *domain.Table {
	t.Helper()

	table := &domain.Table{Header: Header}
	for i, r := range rows {
		date, err := civil.ParseDate(r.Date)
		if err != nil {
			t.Fatalf("row %d: parse date %q: %v", i, r.Date, err)
		}
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			t.Fatalf("row %d: parse amount %q: %v", i, r.Amount, err)
		}
		cells := r.cells(i)
		table.Orders = append(table.Orders, &domain.Order{
			OrderID:    r.ID,
			Category:   r.Category,
			Size:       r.Size,
			Quantity:   int64(r.Qty),
			Amount:     amount,
			Currency:   cells[9],
			Date:       date,
			Fulfilment: r.Fulfilment,
			B2B:        r.B2B,
			ShipState:  r.State,
			ShipCity:   r.City,
			Status:     r.Status,
			Raw:        cells,
		})
	}
	return table
}

// Quarter returns a small Jan–Mar 2022 dataset used across package tests.
func Quarter() []Row {
	return []Row{
		{ID: "405-8078784-5731545", Date: "2022-01-05", Status: "Shipped", Fulfilment: "Amazon", Category: "Set", Size: "S", Qty: 1, Amount: "647.62", City: "MUMBAI", State: "MAHARASHTRA"},
		{ID: "171-9198151-1101146", Date: "2022-01-17", Status: "Shipped", Fulfilment: "Merchant", Category: "kurta", Size: "3XL", Qty: 1, Amount: "406.00", City: "BENGALURU", State: "KARNATAKA"},
		{ID: "404-0687676-7273146", Date: "2022-02-01", Status: "Shipped", Fulfilment: "Amazon", Category: "kurta", Size: "XL", Qty: 2, Amount: "329.00", City: "NAVI MUMBAI", State: "MAHARASHTRA", B2B: true},
		{ID: "403-9615377-8133951", Date: "2022-02-14", Status: "Cancelled", Fulfilment: "Merchant", Category: "Western Dress", Size: "L", Qty: 0, Amount: "753.33", City: "PUDUCHERRY", State: "PUDUCHERRY"},
		{ID: "407-1069790-7240320", Date: "2022-02-28", Status: "Shipped", Fulfilment: "Amazon", Category: "Top", Size: "3XL", Qty: 1, Amount: "574.00", City: "CHENNAI", State: "TAMIL NADU"},
		{ID: "404-1490984-4578765", Date: "2022-03-03", Status: "Shipped", Fulfilment: "Amazon", Category: "Set", Size: "XL", Qty: 3, Amount: "824.00", City: "GHAZIABAD", State: "UTTAR PRADESH"},
		{ID: "408-5748499-6859555", Date: "2022-03-19", Status: "Pending", Fulfilment: "Merchant", Category: "kurta", Size: "L", Qty: 1, Amount: "653.00", City: "CHANDIGARH", State: "CHANDIGARH", B2B: true},
		{ID: "406-7807733-3785945", Date: "2022-03-31", Status: "Shipped", Fulfilment: "Amazon", Category: "Set", Size: "S", Qty: 1, Amount: "399.00", City: "MUMBAI", State: "MAHARASHTRA"},
	}
}
