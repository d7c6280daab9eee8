package domain

// Categorization decision actions returned by the LLM.
const (
	ActionUseExisting = "use_existing"
	ActionCreateNew   = "create_new"
)

// CategoryDecision is the structured categorization verdict for one
// document: reuse an existing category by exact name, or create a new
// one. CategoryDescription is only set for create_new.
type CategoryDecision struct {
	Action              string `json:"action"`
	CategoryName        string `json:"category_name"`
	CategoryDescription string `json:"category_description,omitempty"`
}

// FallbackDecision is the deterministic decision applied when the LLM
// response cannot be parsed. Building it never fails.
func FallbackDecision() CategoryDecision {
	return CategoryDecision{
		Action:              ActionCreateNew,
		CategoryName:        "Uncategorized",
		CategoryDescription: "Documents that couldn't be automatically categorized",
	}
}

// ProcessResult is the structured outcome of one processing attempt.
// Failure branches set Success=false with a human-readable Message and
// perform no partial status update; the worker loop translates the
// flag into a terminal document status.
type ProcessResult struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message,omitempty"`
	DocumentID    string           `json:"document_id"`
	Summary       string           `json:"summary,omitempty"`
	Decision      CategoryDecision `json:"categorization"`
	CategoryID    string           `json:"category_id,omitempty"`
	ContentLength int              `json:"content_length"`
}
