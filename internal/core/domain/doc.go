// Package domain contains the core types of the retrieval engine:
// documents, chunks, index entries, retrieval results, and the sentinel
// errors shared across all layers.
//
// The domain layer has no dependencies on adapters or infrastructure.
package domain
