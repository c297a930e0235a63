package loader

import "errors"

var (
	// ErrMalformedCSV is returned when the source cannot be read as a CSV table.
	ErrMalformedCSV = errors.New("malformed CSV")

	// ErrMissingColumns is returned when the header lacks a required column.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrUnknownDataset is returned by Cache.Get for an id that was never loaded.
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrUnsupportedSource is returned by Resolve for a source it cannot open.
	ErrUnsupportedSource = errors.New("unsupported source")
)
