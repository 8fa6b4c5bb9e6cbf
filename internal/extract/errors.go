package extract

import "errors"

var (
	// ErrExtraction wraps any failure of the underlying document library.
	ErrExtraction = errors.New("text extraction failed")

	ErrUnsupported = errors.New("unsupported document type")
)
