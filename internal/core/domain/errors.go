package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTicker indicates a ticker symbol could not be parsed.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrUnavailable indicates a collaborator produced no data.
	// Collaborators normally report this through Outcome; the error form
	// is used where an Outcome has to cross an error-returning boundary.
	ErrUnavailable = errors.New("source unavailable")

	// ErrNoCredential indicates a provider needs an API key that is not configured.
	ErrNoCredential = errors.New("no credential configured")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Generative extraction is skipped without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or failed. Semantic filtering and semantic matching are skipped without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrConfigInvalid indicates the loaded settings failed validation.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrMissingService indicates a required service was not wired.
	ErrMissingService = errors.New("service not configured")

	// ErrFailureBudgetExceeded indicates a batch stopped after too many failed tickers.
	ErrFailureBudgetExceeded = errors.New("failure budget exceeded")
)
