package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// nullTokens are the cell values treated as missing.
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"-nan": true,
	"null": true,
	"NULL": true,
	"None": true,
	"<NA>": true,
	"#N/A": true,
	"#NA":  true,
}

func isNull(s string) bool {
	return nullTokens[strings.TrimSpace(s)]
}

// Parse reads a CSV sales report and returns the normalized table.
// Rows with a null amount, a null currency or an unparseable date are
// dropped silently; a structurally unreadable file is an error.
func Parse(r io.Reader) (*domain.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Parse: %w: %v", ErrMalformedCSV, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("Parse: %w: file is empty", ErrMalformedCSV)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return ParseRecords(header, records[1:])
}

// ParseRecords normalizes an already split header and rows. It is shared by
// the CSV reader and the cloud sources.
func ParseRecords(header []string, rows [][]string) (*domain.Table, error) {
	keep := keptColumns(header)

	outHeader := make([]string, 0, len(keep))
	for _, i := range keep {
		outHeader = append(outHeader, header[i])
	}

	idx, err := indexColumns(outHeader)
	if err != nil {
		return nil, err
	}

	table := &domain.Table{Header: outHeader}
	for _, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("ParseRecords: %w: row has %d fields, header has %d",
				ErrMalformedCSV, len(row), len(header))
		}

		raw := make([]string, 0, len(keep))
		for _, i := range keep {
			raw = append(raw, row[i])
		}

		order, ok := parseOrder(raw, idx)
		if !ok {
			table.Dropped++
			continue
		}
		table.Orders = append(table.Orders, order)
	}

	return table, nil
}

// keptColumns returns the indexes of header columns that are not legacy.
func keptColumns(header []string) []int {
	keep := make([]int, 0, len(header))
	for i, name := range header {
		if isLegacy(name) {
			continue
		}
		keep = append(keep, i)
	}
	return keep
}

func isLegacy(name string) bool {
	for _, legacy := range domain.LegacyColumns {
		if strings.TrimSpace(name) == legacy {
			return true
		}
	}
	return false
}

// indexColumns maps each required column to its position in header.
// Matching is case-insensitive and ignores surrounding whitespace.
func indexColumns(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := byName[key]; !exists {
			byName[key] = i
		}
	}

	idx := make(map[string]int, len(domain.RequiredColumns))
	var missing []string
	for _, col := range domain.RequiredColumns {
		i, ok := byName[strings.ToLower(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("indexColumns: %w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseOrder(raw []string, idx map[string]int) (*domain.Order, bool) {
	cell := func(col string) string {
		return strings.TrimSpace(raw[idx[col]])
	}
	// Null label cells are stored as "" so aggregates can leave them out.
	label := func(col string) string {
		if v := cell(col); !isNull(v) {
			return v
		}
		return ""
	}

	amountStr := cell(domain.ColAmount)
	if isNull(amountStr) {
		return nil, false
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, false
	}

	currency := cell(domain.ColCurrency)
	if isNull(currency) {
		return nil, false
	}

	date, ok := parseDate(cell(domain.ColDate))
	if !ok {
		return nil, false
	}

	return &domain.Order{
		OrderID:    cell(domain.ColOrderID),
		Category:   label(domain.ColCategory),
		Size:       label(domain.ColSize),
		Quantity:   parseQuantity(cell(domain.ColQuantity)),
		Amount:     amount,
		Currency:   currency,
		Date:       date,
		Fulfilment: label(domain.ColFulfilment),
		B2B:        parseBool(cell(domain.ColB2B)),
		ShipState:  label(domain.ColShipState),
		ShipCity:   label(domain.ColShipCity),
		Status:     label(domain.ColStatus),
		Raw:        raw,
	}, true
}

// parseQuantity accepts integers and integral floats ("3.0"); anything else is 0.
func parseQuantity(s string) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	return int64(f)
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

// IsMalformed reports whether err is a structural load failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedCSV) || errors.Is(err, ErrMissingColumns)
}
