package portfolios

import "errors"

var (
	ErrUnsupportedFile = errors.New("only PDF files are supported")
	ErrExportDisabled  = errors.New("export is not configured")
)

// FallbackHeader is set on responses rendered from the fallback record because
// parsed_data could not be decoded.
const (
	FallbackHeader = "X-Record-Fallback"
	fallbackReason = "invalid_edited_record"
)
