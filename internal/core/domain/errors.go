package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidConfig indicates bad chunking, provider, or storage parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArgument indicates a malformed call-site argument (e.g. k <= 0).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrProviderUnavailable indicates the embedding backend did not respond.
	// Retrieval and ingestion are impossible until the backend is reachable.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrRateLimited indicates the embedding backend rejected the request
	// due to rate limiting. Retry policy belongs to the caller, not the engine.
	ErrRateLimited = errors.New("rate limited")

	// ErrDimensionMismatch indicates a vector whose length disagrees with the
	// established embedding dimension. This is an integrity error and is
	// never silently coerced.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexNotFound indicates no persisted index exists at the given path.
	ErrIndexNotFound = errors.New("index not found")

	// ErrCorruptIndex indicates the persisted index artifacts are unreadable
	// or mutually inconsistent.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrTenantNotIngested indicates retrieval was requested for a tenant
	// that has never completed an ingestion. Distinct from an existing but
	// empty index, which yields an empty result instead.
	ErrTenantNotIngested = errors.New("tenant not ingested")

	// ErrNoDocuments indicates an ingestion run processed zero documents.
	ErrNoDocuments = errors.New("no documents could be processed")
)
