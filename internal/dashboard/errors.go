package dashboard

import "errors"

// ErrInvalidOptions is returned for presentation controls outside their range.
var ErrInvalidOptions = errors.New("invalid view options")
