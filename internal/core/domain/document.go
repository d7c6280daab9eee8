package domain

import "time"

type ProcessingStatus string

const (
	StatusQueued     ProcessingStatus = "QUEUED"
	StatusInProgress ProcessingStatus = "IN_PROGRESS"
	StatusComplete   ProcessingStatus = "COMPLETE"
	StatusFailed     ProcessingStatus = "FAILED"
)

// Document is a web URL saved by a user. Processing fills Summary and
// advances ProcessingStatus; QUEUED is set exactly once at creation.
type Document struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	URL              string           `json:"url"`
	DOM              string           `json:"dom,omitempty"`
	Title            string           `json:"title,omitempty"`
	Description      string           `json:"description,omitempty"`
	Summary          string           `json:"summary,omitempty"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// DocumentSpec carries the caller-supplied fields for document creation.
type DocumentSpec struct {
	UserID      string `json:"user_id"`
	URL         string `json:"url"`
	DOM         string `json:"dom,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}
