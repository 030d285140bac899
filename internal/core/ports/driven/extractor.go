package driven

import "context"

// TextExtractor produces plain text from a document file on disk.
// Each extractor handles specific file extensions (e.g., .txt, .pdf).
type TextExtractor interface {
	// Extensions returns the lower-case file extensions this extractor
	// handles, including the leading dot.
	Extensions() []string

	// Extract reads the file at path and returns its text content.
	Extract(ctx context.Context, path string) (string, error)
}
