package fetcher

import "errors"

// Reasons a fetch yields no payload. They are only logged: Gate.Fetch reports
// absence as a boolean and never returns them to callers.
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrPrivateIP        = errors.New("URL resolves to a private IP")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrBodyTooLarge     = errors.New("response body too large")
	ErrTimeout          = errors.New("fetch timed out")
)
