// Package extractors provides text extraction from document files and a
// registry that dispatches on file extension. Unsupported extensions are a
// skip, not an error; a failing extraction is a per-document failure that
// the ingestion pipeline records and moves past.
package extractors
