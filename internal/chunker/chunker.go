// Package chunker splits extracted document text into overlapping
// fixed-size windows.
package chunker

import (
	"fmt"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 50

// Chunker produces deterministic chunk boundaries: identical input always
// yields an identical ordered sequence, so re-ingestion is reproducible.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker. It fails with domain.ErrInvalidConfig unless
// chunkSize > 0 and 0 <= overlap < chunkSize.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d",
			domain.ErrInvalidConfig, c.chunkSize)
	}
	if c.overlap < 0 || c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap must be in [0, chunk size), got %d",
			domain.ErrInvalidConfig, c.overlap)
	}

	return c, nil
}

// ChunkSize returns the configured window size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }

// Split walks text in fixed-size windows advancing by chunkSize - overlap
// characters. Sizes, overlap, and spans all count characters (code points),
// not bytes, so multibyte text never splits mid-rune. The final window is
// truncated to the remaining length and may be much shorter than the stride;
// short trailing chunks are kept, never dropped. Empty input yields an
// empty slice.
func (c *Chunker) Split(source, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	stride := c.chunkSize - c.overlap
	estimated := (len(runes) / stride) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	ordinal := 0
	for start := 0; start < len(runes); start += stride {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		// IDs are derived, not random, so two runs over the same input
		// produce identical chunks.
		chunks = append(chunks, domain.Chunk{
			ID:      fmt.Sprintf("%s#%d", source, ordinal),
			Text:    string(runes[start:end]),
			Source:  source,
			Ordinal: ordinal,
			Start:   start,
			End:     end,
		})
		ordinal++

		// Once a window reaches the end of the text, any further stride
		// would only re-emit a suffix of this chunk.
		if end == len(runes) {
			break
		}
	}

	return chunks
}
