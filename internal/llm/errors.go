package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when the provider credential is absent.
	ErrMissingAPIKey = errors.New("LLM API key is not configured")
	// ErrRateLimited marks a retryable quota or rate limit failure.
	ErrRateLimited = errors.New("LLM rate limit or quota exceeded")
	// ErrModelNotFound is returned when the configured model does not exist.
	ErrModelNotFound = errors.New("LLM model not found")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("LLM response was empty")
)

// ErrUnsupportedProvider is returned for an unknown provider name.
type ErrUnsupportedProvider struct {
	Provider string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported LLM provider: %s", e.Provider)
}
