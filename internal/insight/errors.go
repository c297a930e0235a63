package insight

import "errors"

var (
	// ErrNoOrders is returned when there is nothing to summarize.
	ErrNoOrders = errors.New("no orders in the current selection")

	// ErrUnavailable wraps any failure of the text-generation service.
	ErrUnavailable = errors.New("insight service unavailable")

	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty response from model")
)
