package domain

import "time"

// QueueJob is one pending request to process a single document. The
// queue owns the job until dequeue; after that the reference lives only
// in the in-flight worker call.
type QueueJob struct {
	DocumentID string         `json:"document_id"`
	UserID     string         `json:"user_id"`
	QueuedAt   time.Time      `json:"queued_at"`
	Metadata   map[string]any `json:"metadata"`
}
