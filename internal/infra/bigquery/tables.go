package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

// TableRef identifies a BigQuery table, written bq://project.dataset.table.
type TableRef struct {
	ProjectID string
	DatasetID string
	TableID   string
}

func (r TableRef) String() string {
	return "bq://" + r.ProjectID + "." + r.DatasetID + "." + r.TableID
}

// ParseTableRef parses bq://project.dataset.table.
func ParseTableRef(ref string) (TableRef, error) {
	if !strings.HasPrefix(ref, "bq://") {
		return TableRef{}, fmt.Errorf("invalid BigQuery table reference: %s", ref)
	}
	parts := strings.Split(strings.TrimPrefix(ref, "bq://"), ".")
	if len(parts) != 3 {
		return TableRef{}, fmt.Errorf("invalid BigQuery table reference (want project.dataset.table): %s", ref)
	}
	for _, p := range parts {
		if p == "" {
			return TableRef{}, fmt.Errorf("invalid BigQuery table reference (empty part): %s", ref)
		}
	}
	return TableRef{ProjectID: parts[0], DatasetID: parts[1], TableID: parts[2]}, nil
}

// TableReader reads whole BigQuery tables as string cells, so that they can
// go through the same normalization as an uploaded CSV.
type TableReader struct{}

// NewTableReader creates a new TableReader.
func NewTableReader() *TableReader {
	return &TableReader{}
}

// ReadTable returns the table's column names and every row rendered as text.
func (r *TableReader) ReadTable(ctx context.Context, ref string) ([]string, [][]string, error) {
	tr, err := ParseTableRef(ref)
	if err != nil {
		return nil, nil, err
	}

	client, err := bigquery.NewClient(ctx, tr.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("ReadTable: bigquery client: %w", err)
	}
	defer client.Close()

	return ReadTableWithClient(ctx, client, tr)
}

// ReadTableWithClient reads the table using the provided BigQuery client.
func ReadTableWithClient(ctx context.Context, client *bigquery.Client, tr TableRef) ([]string, [][]string, error) {
	table := client.DatasetInProject(tr.ProjectID, tr.DatasetID).Table(tr.TableID)

	meta, err := table.Metadata(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("ReadTable: table metadata: %w", err)
	}

	header := make([]string, 0, len(meta.Schema))
	for _, field := range meta.Schema {
		header = append(header, field.Name)
	}

	it := table.Read(ctx)

	var rows [][]string
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("ReadTable: iter next: %w", err)
		}

		row := make([]string, len(header))
		for i := range row {
			if i < len(values) {
				row[i] = FormatValue(values[i])
			}
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

// FormatValue renders a BigQuery cell the way it would appear in a CSV export.
// NULL becomes the empty string.
func FormatValue(v bigquery.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *big.Rat:
		if x == nil {
			return ""
		}
		return trimZeros(x.FloatString(9))
	case civil.Date:
		return x.String()
	case civil.DateTime:
		return x.Date.String() + " " + x.Time.String()
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
