package provider

import "errors"

var (
	// ErrEmptyResponse is returned when a backend answers without any text.
	ErrEmptyResponse = errors.New("provider returned empty response")

	// ErrMissingAPIKey is returned by backends constructed without a credential.
	ErrMissingAPIKey = errors.New("provider api key not configured")

	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown provider backend")
)
