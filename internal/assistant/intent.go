package assistant

import "strings"

// ToolSelection pairs a tool name with the parameters the rule extracted.
type ToolSelection struct {
	Tool       string
	Parameters map[string]any
}

// knownCategories are the spending category keywords the last rule scans
// for, in scan order.
var knownCategories = []string{"food", "transport", "housing", "entertainment", "shopping", "healthcare"}

// DetectTool picks at most one tool for a free-text message with ordered
// substring rules. Rule order is the tie-break policy and part of the
// contract:
//  1. "account" together with "show" or "list" selects get_user_accounts
//  2. "transaction" together with "recent" selects get_account_transactions
//  3. "spending" or "analyze" selects analyze_spending
//  4. a known category keyword selects get_category_transactions
//
// No match returns nil and the message goes to the model unaugmented.
func DetectTool(message string) *ToolSelection {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "account") && (strings.Contains(lower, "show") || strings.Contains(lower, "list")) {
		return &ToolSelection{Tool: "get_user_accounts", Parameters: map[string]any{}}
	}

	if strings.Contains(lower, "transaction") && strings.Contains(lower, "recent") {
		return &ToolSelection{Tool: "get_account_transactions", Parameters: map[string]any{"limit": 10}}
	}

	if strings.Contains(lower, "spending") || strings.Contains(lower, "analyze") {
		return &ToolSelection{Tool: "analyze_spending", Parameters: map[string]any{}}
	}

	for _, category := range knownCategories {
		if strings.Contains(lower, category) {
			return &ToolSelection{Tool: "get_category_transactions", Parameters: map[string]any{"category": category}}
		}
	}

	return nil
}
