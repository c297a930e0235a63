package loader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvloznov/sales-dashboard/internal/domain"
)

// ObjectFetcher downloads raw object bytes, e.g. from Cloud Storage.
type ObjectFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// TableReader reads a remote table as a header and string rows.
type TableReader interface {
	ReadTable(ctx context.Context, ref string) ([]string, [][]string, error)
}

// Resolver opens the sources a dataset can be loaded from: local paths,
// gs:// objects and bq:// tables. Remote readers are optional; a nil reader
// makes the matching scheme unsupported.
type Resolver struct {
	Objects ObjectFetcher
	Tables  TableReader
}

// SourceID returns the cache identity of a named source.
func SourceID(source string) string {
	switch {
	case strings.HasPrefix(source, "gs://"), strings.HasPrefix(source, "bq://"):
		return source
	default:
		return "file:" + filepath.Clean(source)
	}
}

// ContentID returns the cache identity of uploaded content.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Open reads and normalizes the named source.
func (r *Resolver) Open(ctx context.Context, source string) (*domain.Table, error) {
	switch {
	case strings.HasPrefix(source, "gs://"):
		if r.Objects == nil {
			return nil, fmt.Errorf("Open: %w: %s", ErrUnsupportedSource, source)
		}
		data, err := r.Objects.Fetch(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("Open: fetching %s: %w", source, err)
		}
		return Parse(bytes.NewReader(data))

	case strings.HasPrefix(source, "bq://"):
		if r.Tables == nil {
			return nil, fmt.Errorf("Open: %w: %s", ErrUnsupportedSource, source)
		}
		header, rows, err := r.Tables.ReadTable(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("Open: reading %s: %w", source, err)
		}
		return ParseRecords(header, rows)

	default:
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("Open: open file %q: %w", source, err)
		}
		defer f.Close()
		return Parse(f)
	}
}

// IsRemote reports whether source names a gs:// object or a bq:// table.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "gs://") || strings.HasPrefix(source, "bq://")
}
