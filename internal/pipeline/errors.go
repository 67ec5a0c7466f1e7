package pipeline

import "errors"

var (
	// ErrInput means the document could not be read or decoded as text.
	// Nothing downstream of loading runs.
	ErrInput = errors.New("invalid input")

	// ErrModelUnavailable means the embedding provider could not produce
	// usable vectors. The run is aborted without a partial result.
	ErrModelUnavailable = errors.New("embedding model unavailable")
)
