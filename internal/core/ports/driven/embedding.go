package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The engine is polymorphic over provider identity: it depends only on this
// contract, never on a specific backend. Embeddings from different providers
// are not comparable; swapping providers requires re-ingesting every tenant.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result has the
	// same length and order as the input, and every vector has exactly
	// Dimensions() elements; a backend returning a differently sized vector
	// fails with domain.ErrDimensionMismatch.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// Constant for a given provider instance.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// request that does not run inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
