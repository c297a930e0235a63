package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dvloznov/sales-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet written by the XLSX export.
const SheetName = "Orders"

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat maps a request value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("ParseFormat: %w: %q", ErrUnknownFormat, s)
}

// Filename is the download name for the filtered subset.
func (f Format) Filename() string {
	return "filtered_orders." + string(f)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write encodes orders with header in format f.
func Write(w io.Writer, f Format, header []string, orders []*domain.Order) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, header, orders)
	case FormatXLSX:
		return WriteXLSX(w, header, orders)
	}
	return fmt.Errorf("Write: %w: %q", ErrUnknownFormat, f)
}

// WriteCSV writes the header and each order's source cells as UTF-8 CSV
// without an index column. The output loads back into an equal table.
func WriteCSV(w io.Writer, header []string, orders []*domain.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("WriteCSV: write header: %w", err)
	}
	for i, o := range orders {
		if err := cw.Write(o.Raw); err != nil {
			return fmt.Errorf("WriteCSV: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}

// WriteXLSX writes orders to a single-sheet workbook. Quantity and amount
// cells are numeric; everything else is written as text.
func WriteXLSX(w io.Writer, header []string, orders []*domain.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("WriteXLSX: rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("WriteXLSX: stream writer: %w", err)
	}

	qtyCol, amountCol := columnIndex(header, domain.ColQuantity), columnIndex(header, domain.ColAmount)

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("WriteXLSX: write header: %w", err)
	}

	for i, o := range orders {
		row := make([]interface{}, len(o.Raw))
		for j, cell := range o.Raw {
			switch j {
			case qtyCol:
				row[j] = o.Quantity
			case amountCol:
				row[j] = o.Amount.InexactFloat64()
			default:
				row[j] = cell
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("WriteXLSX: cell name: %w", err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("WriteXLSX: write row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("WriteXLSX: flush: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("WriteXLSX: write workbook: %w", err)
	}
	return nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}
