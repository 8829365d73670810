package categorizer

import (
	"context"
	"fmt"
	"strings"
)

// AIClient defines the interface for AI-based categorization services.
// This abstraction allows the core categorization logic to be tested independently
// of external API calls.
type AIClient interface {
	// Categorize asks the service to pick one of categories for tx. An empty
	// string means the service had no answer.
	Categorize(ctx context.Context, tx Transaction, categories []string) (string, error)
}

// buildPrompt renders the question sent to the model.
func buildPrompt(tx Transaction, categories []string) string {
	return fmt.Sprintf(`Categorize the following bank transaction:
Description: %s
Amount: %s
Account: %s

Please assign this transaction to exactly one of the following categories:
%s

Respond in this format:
Category: [Selected Category Name]
Description: [Brief explanation of why you chose this category]`,
		tx.RawName,
		tx.Amount.String(),
		tx.Account,
		strings.Join(categories, ", "))
}

// extractCategoryFromResponse parses a model reply. Only categories from
// the offered list are accepted.
func extractCategoryFromResponse(response string, categories []string) (string, string) {
	var categoryName, description string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Category:"):
			categoryName = strings.TrimSpace(strings.TrimPrefix(line, "Category:"))
		case strings.HasPrefix(line, "Description:"):
			description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
		}
	}
	categoryName = strings.Trim(categoryName, "[]\"' ")

	for _, c := range categories {
		if strings.EqualFold(c, categoryName) {
			return c, description
		}
	}

	// No structured answer; accept a known category named in the text.
	for _, c := range categories {
		if strings.Contains(response, c) {
			return c, strings.TrimSpace(response)
		}
	}
	return "", strings.TrimSpace(response)
}
