package domain

import "time"

// Category groups documents for a single owner. (UserID, Name) is
// unique; DocumentIDs keeps insertion order with duplicates suppressed.
type Category struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DocumentIDs []string  `json:"document_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategorySpec struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryPatch updates only the fields that are non-nil. An empty
// patch is a no-op and must not bump updated_at.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (p CategoryPatch) IsZero() bool {
	return p.Name == nil && p.Description == nil
}

// CategorySummary is a derived view, never stored. RepresentativeDocuments
// holds the most recently created members; TotalDocuments is the full
// membership count regardless of the representative subset size.
type CategorySummary struct {
	Category                Category   `json:"category"`
	CategoryNews            string     `json:"category_news,omitempty"`
	RepresentativeDocuments []Document `json:"representative_documents"`
	TotalDocuments          int        `json:"total_documents"`
}
