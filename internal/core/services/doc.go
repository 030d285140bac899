// Package services implements the engine use cases: the ingestion pipeline,
// the retriever, and the process-wide per-tenant index cache they share.
package services
