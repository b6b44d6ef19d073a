package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	appErrors "finance-dashboard/errors"
)

const chatSystemPrompt = `You are a helpful financial assistant for the dashboard. You help users manage their finances, analyze spending, and understand their financial data.

Available information:
- User has accounts with balances and transactions
- You can analyze spending patterns
- You can show transaction history
- You can help with account management

Guidelines:
- Be helpful and friendly
- Provide actionable financial advice
- Use the data provided to give specific insights
- Format numbers as currency (Rs X.XX)
- Keep responses concise but informative`

type ChatResponse struct {
	Success    bool    `json:"success"`
	Response   string  `json:"response"`
	ToolResult *Result `json:"tool_result,omitempty"`
}

// Chat runs one turn of the conversational front-end: keyword intent
// detection picks at most one tool, its result is folded into the system
// prompt, and the model's text reply is relayed back together with the
// tool envelope.
func (a *Assistant) Chat(ctx context.Context, userID string, message string, history []Message) (ChatResponse, error) {
	if a.ai == nil {
		return ChatResponse{}, appErrors.New(appErrors.ErrUpstream, "The AI assistant is not configured.")
	}

	var toolResult *Result
	if selection := DetectTool(message); selection != nil {
		result := a.Execute(ctx, userID, selection.Tool, selection.Parameters)
		toolResult = &result
	}

	systemPrompt := chatSystemPrompt
	if toolResult != nil && toolResult.Success {
		if data, err := json.Marshal(toolResult.Data); err == nil {
			systemPrompt += "\n\nCurrent data context: " + string(data)
		}
	}

	reply, err := a.ai.GenerateReply(ctx, systemPrompt, history, message)
	if err != nil {
		return ChatResponse{}, err
	}

	return ChatResponse{
		Success:    true,
		Response:   reply,
		ToolResult: toolResult,
	}, nil
}

// AnalyzeAccount answers a free-text question about one account from its
// most recent transactions.
func (a *Assistant) AnalyzeAccount(ctx context.Context, userID string, accountID string, question string) (string, error) {
	if a.ai == nil {
		return "", appErrors.New(appErrors.ErrUpstream, "The AI assistant is not configured.")
	}

	detail, err := a.svc.GetAccountWithTransactions(ctx, userID, accountID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return "No transactions found for this account.", nil
		}
		return "", err
	}
	if len(detail.Transactions) == 0 {
		return "No transactions found for this account.", nil
	}

	transactions := detail.Transactions
	if len(transactions) > 10 {
		transactions = transactions[:10]
	}

	var lines []string
	for _, txn := range transactions {
		lines = append(lines, fmt.Sprintf("• %s | Rs %.2f | %s | %s",
			txn.Date.Format("2006-01-02"), txn.Amount, txn.Category, txn.Description))
	}

	prompt := fmt.Sprintf(`You are a helpful financial assistant.

The user asked: %q

Here are their recent transactions:

%s

Answer briefly and helpfully based only on this data.`, question, strings.Join(lines, "\n"))

	return a.ai.Complete(ctx, prompt)
}
