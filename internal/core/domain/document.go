package domain

// Document is a named text source belonging to exactly one tenant.
// It exists only for the duration of ingestion; after chunking the raw
// text is not retained.
type Document struct {
	// Source is the identifier of the document (file name within the
	// tenant's documents directory).
	Source string

	// Text is the full extracted text content.
	Text string
}

// Chunk is a contiguous substring of a document's extracted text.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// Source is the originating document identifier.
	Source string

	// Ordinal is the position of this chunk within its document.
	Ordinal int

	// Start and End delimit the chunk's character span [Start, End)
	// within the document text.
	Start int
	End   int
}

// Ref locates a chunk within a tenant's knowledge base. It is the
// metadata carried alongside every index entry and retrieval result.
type Ref struct {
	// DocumentID is the source document identifier.
	DocumentID string `json:"document_id"`

	// Ordinal is the chunk's position within that document.
	Ordinal int `json:"chunk_ordinal"`
}

// Entry is the (embedding, text, metadata) triple held by the vector index.
type Entry struct {
	// Embedding is the fixed-length vector for the chunk text.
	Embedding []float32

	// Text is the chunk content returned on retrieval.
	Text string

	// Ref identifies the chunk's origin.
	Ref Ref
}

// Hit is a single nearest-neighbour search result.
type Hit struct {
	// Text is the matched chunk content.
	Text string

	// Ref identifies the chunk's origin.
	Ref Ref

	// Distance is the squared Euclidean distance to the query vector.
	// Smaller means more similar.
	Distance float64
}

// RetrievedChunk is a ranked context chunk returned by the Retriever,
// consumed by a downstream answer generator.
type RetrievedChunk struct {
	// Text is the chunk content.
	Text string `json:"text"`

	// Ref identifies the chunk's origin.
	Ref Ref `json:"metadata"`

	// Distance is the squared Euclidean distance to the query embedding.
	Distance float64 `json:"distance"`
}
