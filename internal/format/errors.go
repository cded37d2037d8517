package format

import "errors"

var (
	// ErrTruncated indicates the image lacked the words required for a structure.
	ErrTruncated = errors.New("format: truncated image")
)
