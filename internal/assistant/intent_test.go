package assistant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectTool(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantTool string
	}{
		{"show accounts", "Show me my accounts", "get_user_accounts"},
		{"list accounts", "please list every account I have", "get_user_accounts"},
		{"recent transactions", "what are my recent transactions?", "get_account_transactions"},
		{"spending", "how is my spending this month", "analyze_spending"},
		{"analyze", "analyze my finances", "analyze_spending"},
		{"spending beats category", "my spending on food", "analyze_spending"},
		{"category only", "my food expenses", "get_category_transactions"},
		{"category transport", "transport costs lately", "get_category_transactions"},
		{"case insensitive", "SHOW MY ACCOUNTS", "get_user_accounts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection := DetectTool(tt.message)
			require.NotNil(t, selection)
			require.Equal(t, tt.wantTool, selection.Tool)
		})
	}
}

func TestDetectToolRuleOrder(t *testing.T) {
	// mentions accounts, spending and a category, the first rule wins
	selection := DetectTool("show my accounts and my food spending")
	require.NotNil(t, selection)
	require.Equal(t, "get_user_accounts", selection.Tool)

	// recent transactions outranks the category rule
	selection = DetectTool("recent transactions for food")
	require.NotNil(t, selection)
	require.Equal(t, "get_account_transactions", selection.Tool)
	require.Equal(t, 10, selection.Parameters["limit"])
}

func TestDetectToolCategoryParameter(t *testing.T) {
	selection := DetectTool("what did healthcare cost me")
	require.NotNil(t, selection)
	require.Equal(t, "get_category_transactions", selection.Tool)
	require.Equal(t, "healthcare", selection.Parameters["category"])
}

func TestDetectToolNoMatch(t *testing.T) {
	require.Nil(t, DetectTool("hello there"))
	require.Nil(t, DetectTool(""))
	require.Nil(t, DetectTool("what is the weather like"))
}
