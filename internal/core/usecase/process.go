package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/linkstash/internal/core/domain"
	"github.com/kirillkom/linkstash/internal/core/ports"
)

// ProcessDocumentUseCase orchestrates the single-document pipeline:
// content fetch, LLM summarization, LLM categorization, and category
// assignment. Every failure branch produces a structured result with
// Success=false; errors never escape ProcessDocument.
type ProcessDocumentUseCase struct {
	documents  ports.DocumentLifecycle
	categories ports.CategoryAssigner
	fetcher    ports.ContentFetcher
	completer  ports.Completer
}

func NewProcessDocumentUseCase(
	documents ports.DocumentLifecycle,
	categories ports.CategoryAssigner,
	fetcher ports.ContentFetcher,
	completer ports.Completer,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		documents:  documents,
		categories: categories,
		fetcher:    fetcher,
		completer:  completer,
	}
}

func (uc *ProcessDocumentUseCase) ProcessDocument(ctx context.Context, documentID, userID string) domain.ProcessResult {
	doc, err := uc.documents.GetDocument(ctx, documentID)
	if err != nil {
		return failure(documentID, fmt.Sprintf("error retrieving document: %v", err))
	}
	if doc == nil {
		return failure(documentID, fmt.Sprintf("document %s not found", documentID))
	}
	if doc.UserID != userID {
		return failure(documentID, "document does not belong to user")
	}

	content, err := uc.fetcher.Fetch(ctx, doc.URL)
	if err != nil {
		return failure(documentID, fmt.Sprintf("error fetching content: %v", err))
	}
	if strings.TrimSpace(content) == "" {
		return failure(documentID, "no content found at the provided URL")
	}

	summary, err := uc.summarize(ctx, doc.URL, content)
	if err != nil {
		return failure(documentID, fmt.Sprintf("error generating summary: %v", err))
	}
	// The summary is persisted before categorization so it survives a
	// downstream categorization failure.
	if _, err := uc.documents.UpdateSummary(ctx, documentID, summary); err != nil {
		return failure(documentID, fmt.Sprintf("error storing summary: %v", err))
	}

	existing, err := uc.categories.ListAll(ctx, userID, 0, 100)
	if err != nil {
		return failure(documentID, fmt.Sprintf("error listing categories: %v", err))
	}

	decision := uc.categorize(ctx, doc.URL, summary, existing)

	categoryID, err := uc.applyDecision(ctx, documentID, userID, decision, existing)
	if err != nil {
		return failure(documentID, fmt.Sprintf("error applying categorization: %v", err))
	}

	return domain.ProcessResult{
		Success:       true,
		DocumentID:    documentID,
		Summary:       summary,
		Decision:      decision,
		CategoryID:    categoryID,
		ContentLength: len(content),
	}
}

// SummarizeURLStream fetches the URL and streams the summary through
// onChunk without touching stored documents. It backs the interactive
// inference endpoint.
func (uc *ProcessDocumentUseCase) SummarizeURLStream(ctx context.Context, url string, onChunk func(string) error) error {
	content, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return domain.WrapError(domain.ErrEmptyContent, "summarize url", errors.New("no content found at the provided url"))
	}

	return uc.completer.CompleteStream(ctx, summarySystemPrompt, buildSummaryPrompt(url, content), ports.CompletionOptions{
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	}, onChunk)
}

func (uc *ProcessDocumentUseCase) summarize(ctx context.Context, url, content string) (string, error) {
	text, err := uc.completer.Complete(ctx, summarySystemPrompt, buildSummaryPrompt(url, content), ports.CompletionOptions{
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// categorize asks the LLM for a structured decision. Any parse failure
// degrades to the deterministic Uncategorized fallback; this step never
// returns an error.
func (uc *ProcessDocumentUseCase) categorize(ctx context.Context, url, summary string, existing []domain.Category) domain.CategoryDecision {
	raw, err := uc.completer.Complete(ctx, categorizeSystemPrompt, buildCategorizePrompt(url, summary, existing), ports.CompletionOptions{
		MaxTokens:   categorizeMaxTokens,
		Temperature: categorizeTemperature,
	})
	if err != nil {
		slog.Warn("categorization_call_failed", "url", url, "error", err)
		return domain.FallbackDecision()
	}
	return parseDecision(raw)
}

func (uc *ProcessDocumentUseCase) applyDecision(
	ctx context.Context,
	documentID, userID string,
	decision domain.CategoryDecision,
	existing []domain.Category,
) (string, error) {
	switch decision.Action {
	case domain.ActionUseExisting:
		for _, cat := range existing {
			if cat.Name == decision.CategoryName {
				if _, err := uc.categories.AddDocuments(ctx, cat.ID, []string{documentID}, userID); err != nil {
					return "", err
				}
				return cat.ID, nil
			}
		}
		// No exact name match: assignment is skipped and the document
		// stays uncategorized.
		slog.Warn("categorization_name_unmatched",
			"document_id", documentID,
			"category_name", decision.CategoryName,
		)
		return "", nil

	case domain.ActionCreateNew:
		// The model (or the fallback) may propose a name the user already
		// has, e.g. a second Uncategorized document. Reuse that category
		// instead of failing on the name conflict.
		for _, cat := range existing {
			if cat.Name == decision.CategoryName {
				if _, err := uc.categories.AddDocuments(ctx, cat.ID, []string{documentID}, userID); err != nil {
					return "", err
				}
				return cat.ID, nil
			}
		}

		cat, err := uc.categories.Create(ctx, domain.CategorySpec{
			UserID:      userID,
			Name:        decision.CategoryName,
			Description: decision.CategoryDescription,
		})
		if err != nil {
			return "", err
		}
		if _, err := uc.categories.AddDocuments(ctx, cat.ID, []string{documentID}, userID); err != nil {
			return "", err
		}
		return cat.ID, nil
	}
	return "", nil
}

// parseDecision extracts the JSON decision, tolerating markdown code
// fences around it. It never fails: unparsable input degrades to the
// Uncategorized fallback.
func parseDecision(raw string) domain.CategoryDecision {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var decision domain.CategoryDecision
	if err := json.Unmarshal([]byte(text), &decision); err != nil {
		return domain.FallbackDecision()
	}
	return decision
}

func failure(documentID, message string) domain.ProcessResult {
	return domain.ProcessResult{
		Success:    false,
		DocumentID: documentID,
		Message:    message,
	}
}
