package assistant

import (
	"context"
	"errors"
	"fmt"

	appErrors "finance-dashboard/errors"
	"finance-dashboard/internal/finance"
	"finance-dashboard/logging"
)

type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "number" or "boolean"
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type HandlerFunc func(ctx context.Context, userID string, params map[string]any) (data any, description string, err error)

// Tool is one entry of the static catalog: a name, a closed parameter
// schema and the handler the dispatcher invokes.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"parameters"`
	handler     HandlerFunc
}

// Result is the uniform envelope every dispatch returns.
type Result struct {
	Success     bool   `json:"success"`
	Data        any    `json:"data,omitempty"`
	Error       string `json:"error,omitempty"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

type Assistant struct {
	svc   *finance.Dashboard
	ai    *Client
	tools map[string]Tool
	order []string
}

func New(svc *finance.Dashboard, ai *Client) *Assistant {
	a := &Assistant{
		svc:   svc,
		ai:    ai,
		tools: make(map[string]Tool),
	}
	a.registerAll()
	return a
}

func (a *Assistant) register(tool Tool) {
	a.tools[tool.Name] = tool
	a.order = append(a.order, tool.Name)
}

// Tools lists the catalog in registration order.
func (a *Assistant) Tools() []Tool {
	tools := make([]Tool, 0, len(a.order))
	for _, name := range a.order {
		tools = append(tools, a.tools[name])
	}
	return tools
}

// Execute dispatches a tool by name: validates the parameters against the
// declared schema, invokes the handler and wraps the outcome. An unknown
// name or a failed handler comes back as a failure envelope, never a panic.
func (a *Assistant) Execute(ctx context.Context, userID string, name string, params map[string]any) Result {
	tool, ok := a.tools[name]
	if !ok {
		return Result{
			Success: false,
			Error:   fmt.Sprintf("Unknown tool: %s", name),
			Code:    appErrors.ErrUnknownTool,
		}
	}

	if params == nil {
		params = map[string]any{}
	}
	if err := validateParams(tool, params); err != nil {
		return failureResult(err)
	}

	data, description, err := tool.handler(ctx, userID, params)
	if err != nil {
		logging.Logger.Warnf("tool '%s' failed: %v", name, err)
		return failureResult(err)
	}

	return Result{
		Success:     true,
		Data:        data,
		Description: description,
	}
}

// validateParams enforces the closed schema: every required parameter must
// be present, no undeclared keys, and values must match the declared type.
func validateParams(tool Tool, params map[string]any) error {
	declared := make(map[string]Param, len(tool.Params))
	for _, p := range tool.Params {
		declared[p.Name] = p
		if p.Required {
			if _, ok := params[p.Name]; !ok {
				return appErrors.Newf(appErrors.ErrInvalidInput, "missing required parameter: %s", p.Name)
			}
		}
	}
	for key, value := range params {
		p, ok := declared[key]
		if !ok {
			return appErrors.Newf(appErrors.ErrInvalidInput, "undeclared parameter: %s", key)
		}
		if !typeMatches(p.Type, value) {
			return appErrors.Newf(appErrors.ErrInvalidInput, "parameter '%s' must be a %s", key, p.Type)
		}
	}
	return nil
}

func typeMatches(declared string, value any) bool {
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	}
	return false
}

func failureResult(err error) Result {
	message := err.Error()
	var resp appErrors.ErrorResponse
	if errors.As(err, &resp) {
		// surface only the curated message, never wrapping internals
		message = resp.Message
	}
	return Result{
		Success: false,
		Error:   message,
		Code:    appErrors.CodeOf(err),
	}
}

func stringParam(params map[string]any, key string) string {
	value, _ := params[key].(string)
	return value
}

func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return fallback
}

// --- CATALOG --- //

func (a *Assistant) registerAll() {
	a.register(Tool{
		Name:        "get_user_accounts",
		Description: "Get all user accounts with balances and transaction counts",
		Params:      []Param{},
		handler:     a.getUserAccounts,
	})
	a.register(Tool{
		Name:        "get_account_transactions",
		Description: "Get transactions for a specific account",
		Params: []Param{
			{Name: "accountId", Type: "string", Description: "The account ID", Required: true},
			{Name: "limit", Type: "number", Description: "Number of transactions to fetch"},
		},
		handler: a.getAccountTransactions,
	})
	a.register(Tool{
		Name:        "analyze_spending",
		Description: "Analyze user's spending patterns and financial summary",
		Params:      []Param{},
		handler:     a.analyzeSpending,
	})
	a.register(Tool{
		Name:        "get_financial_summary",
		Description: "Get the full financial summary with accounts, recent transactions and category spending",
		Params:      []Param{},
		handler:     a.getFinancialSummary,
	})
	a.register(Tool{
		Name:        "get_category_transactions",
		Description: "Get transactions by category",
		Params: []Param{
			{Name: "category", Type: "string", Description: "Transaction category", Required: true},
			{Name: "limit", Type: "number", Description: "Number of transactions to fetch"},
		},
		handler: a.getCategoryTransactions,
	})
	a.register(Tool{
		Name:        "navigate_to_page",
		Description: "Redirect the user to a page. Only navigate if the user has directly asked for it.",
		Params: []Param{
			{Name: "relativeUrl", Type: "string", Description: "The relative URL to open", Required: true},
		},
		handler: a.navigateToPage,
	})
	a.register(Tool{
		Name:        "display_account",
		Description: "Display account information in a formatted card",
		Params: []Param{
			{Name: "accountId", Type: "string", Required: true},
			{Name: "accountName", Type: "string", Required: true},
			{Name: "accountType", Type: "string", Required: true},
			{Name: "balance", Type: "number", Required: true},
			{Name: "isDefault", Type: "boolean"},
		},
		handler: a.displayAccount,
	})
	a.register(Tool{
		Name:        "display_transaction",
		Description: "Display transaction information in a formatted card",
		Params: []Param{
			{Name: "id", Type: "string", Required: true},
			{Name: "type", Type: "string", Required: true},
			{Name: "amount", Type: "number", Required: true},
			{Name: "description", Type: "string", Required: true},
			{Name: "category", Type: "string", Required: true},
			{Name: "date", Type: "string", Required: true},
			{Name: "status", Type: "string"},
		},
		handler: a.displayTransaction,
	})
}

// --- HANDLERS --- //

func (a *Assistant) getUserAccounts(ctx context.Context, userID string, params map[string]any) (any, string, error) {
	accounts, err := a.svc.GetUserAccounts(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return map[string]any{"accounts": accounts},
		fmt.Sprintf("Found %d accounts for the user.", len(accounts)), nil
}

func (a *Assistant) getAccountTransactions(ctx context.Context, userID string, params map[string]any) (any, string, error) {
	accountID := stringParam(params, "accountId")
	limit := intParam(params, "limit", finance.DEFAULT_TRANSACTION_LIMIT)

	detail, err := a.svc.GetAccountWithTransactions(ctx, userID, accountID)
	if err != nil {
		return nil, "", err
	}

	transactions := detail.Transactions
	if limit > 0 && len(transactions) > limit {
		transactions = transactions[:limit]
	}

	data := map[string]any{
		"account": map[string]any{
			"name":    detail.Name,
			"type":    detail.Type,
			"balance": detail.Balance,
		},
		"transactions": transactions,
	}
	return data, fmt.Sprintf("Retrieved %d transactions for account %s.", len(transactions), detail.Name), nil
}

func (a *Assistant) analyzeSpending(ctx context.Context, userID string, params map[string]any) (any, string, error) {
	accounts, err := a.svc.GetUserAccounts(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	totalBalance := 0.0
	totalTransactions := 0
	for _, account := range accounts {
		totalBalance += account.Balance
		totalTransactions += account.TransactionCount
	}

	data := map[string]any{
		"total_balance":      totalBalance,
		"total_transactions": totalTransactions,
		"account_count":      len(accounts),
		"accounts":           accounts,
	}
	description := fmt.Sprintf("User has %d accounts with a total balance of %.2f and %d total transactions.",
		len(accounts), totalBalance, totalTransactions)
	return data, description, nil
}

func (a *Assistant) getFinancialSummary(ctx context.Context, userID string, params map[string]any) (any, string, error) {
	summary, err := a.svc.GetFinancialSummary(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return summary, fmt.Sprintf("Financial summary across %d accounts.", summary.Summary.AccountCount), nil
}

func (a *Assistant) getCategoryTransactions(ctx context.Context, userID string, params map[string]any) (any, string, error) {
	category := stringParam(params, "category")
	limit := intParam(params, "limit", finance.DEFAULT_TRANSACTION_LIMIT)

	transactions, err := a.svc.GetTransactionsByCategory(ctx, userID, category, limit)
	if err != nil {
		return nil, "", err
	}
	return map[string]any{"transactions": transactions},
		fmt.Sprintf("Retrieved %d '%s' transactions.", len(transactions), category), nil
}

// UI tools below return presentation payloads the caller renders verbatim.

func (a *Assistant) navigateToPage(ctx context.Context, userID string, params map[string]any) (any, string, error) {
	relativeURL := stringParam(params, "relativeUrl")
	data := map[string]any{
		"action":       "navigate",
		"relative_url": relativeURL,
	}
	return data, "Redirected the user to the page. Do not write anything else.", nil
}

func (a *Assistant) displayAccount(ctx context.Context, userID string, params map[string]any) (any, string, error) {
	data := map[string]any{
		"render": "account-card",
		"card":   finance.SerializeRecord(params),
	}
	return data, "Displayed the account card.", nil
}

func (a *Assistant) displayTransaction(ctx context.Context, userID string, params map[string]any) (any, string, error) {
	data := map[string]any{
		"render": "transaction-card",
		"card":   finance.SerializeRecord(params),
	}
	return data, "Displayed the transaction card.", nil
}
