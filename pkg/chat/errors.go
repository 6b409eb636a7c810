package chat

import "errors"

var (
	// ErrMissingAPIKey is returned when no OpenAI key is configured.
	ErrMissingAPIKey = errors.New("chat: missing API key")

	// ErrUpstream is returned for non-200 or empty API responses.
	ErrUpstream = errors.New("chat: upstream error")
)
