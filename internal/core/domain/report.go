package domain

import "time"

// DocumentFailure records a per-document ingestion failure. Failures are
// recovered locally: ingestion continues with the remaining documents.
type DocumentFailure struct {
	// Source is the document identifier that failed.
	Source string `json:"source"`

	// Reason is the failure description.
	Reason string `json:"reason"`
}

// IngestionReport summarises one ingestion run for a tenant.
type IngestionReport struct {
	// RunID uniquely identifies this ingestion run.
	RunID string `json:"run_id"`

	// Tenant is the tenant the run belonged to.
	Tenant string `json:"tenant"`

	// DocumentsProcessed counts documents that were extracted, chunked,
	// and embedded successfully.
	DocumentsProcessed int `json:"documents_processed"`

	// DocumentsSkipped counts files with unsupported extensions.
	DocumentsSkipped int `json:"documents_skipped"`

	// Failures lists documents that failed extraction, with reasons.
	Failures []DocumentFailure `json:"failures,omitempty"`

	// ChunksProduced is the total number of chunks across all documents.
	ChunksProduced int `json:"chunks_produced"`

	// EntriesWritten is the number of index entries persisted. Equals
	// ChunksProduced on a fully successful run.
	EntriesWritten int `json:"entries_written"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}
