package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

const (
	summarySystemPrompt    = "You are an expert content summarizer. Provide clear, concise, and informative summaries."
	categorizeSystemPrompt = "You are an expert document organizer. Analyze documents and categorize them appropriately. Always respond with valid JSON only."

	summaryMaxTokens   = 2000
	summaryTemperature = 0.2

	categorizeMaxTokens   = 500
	categorizeTemperature = 0.1

	// Only the head of the fetched content goes into the prompt.
	maxContentChars = 4000
)

func buildSummaryPrompt(url, content string) string {
	snippet := content
	if len(snippet) > maxContentChars {
		snippet = snippet[:maxContentChars]
	}

	return fmt.Sprintf(`Please provide a comprehensive summary of the following web content from %s:

First %d characters of Content:
%s

Please create a short summary of the content in under 150 words. Include:
1. A brief overview of the main topic
2. Key points and important information
3. Any notable conclusions or recommendations
Do not include any additional information or commentary. Just the summary and nothing else, don't say here's the summary or anything like that.

Short Summary:
`, url, maxContentChars, snippet)
}

func buildCategorizePrompt(url, summary string, existing []domain.Category) string {
	if len(existing) == 0 {
		return fmt.Sprintf(`A user has uploaded a document from: %s

Document Summary:
%s

The user currently has no categories. Please suggest an appropriate category name and description for this document. The category name should be broad and should be a single word or phrase.
Ex. category names: "crypto", "genai", "celebs", "new tech", "home decor", "news"

Respond in JSON format:
{
    "action": "create_new",
    "category_name": "suggested category name (concise, 1-3 words)",
    "category_description": "brief description of what documents this category contains"
}
`, url, summary)
	}

	var categories strings.Builder
	for _, cat := range existing {
		categories.WriteString(fmt.Sprintf("- %s: %s\n", cat.Name, cat.Description))
	}

	return fmt.Sprintf(`A user has uploaded a document from: %s

Document Summary:
%s

The user has the following existing categories:
%s
Determine if this document fits into one of the existing categories, or if a new category should be created.

If it fits into an existing category, respond with:
{
    "action": "use_existing",
    "category_name": "exact name of the existing category"
}

If a new category is needed, respond with:
{
    "action": "create_new",
    "category_name": "suggested new category name (concise, 2-4 words)",
    "category_description": "brief description of what documents this category contains"
}
If creating a new category, the category name should be broad and should be a single word or phrase.
Ex. category names: "crypto", "genai", "celebs", "new tech", "home decor", "news"
Respond ONLY with valid JSON, no additional text.
`, url, summary, categories.String())
}
