package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	appErrors "finance-dashboard/errors"
	"finance-dashboard/internal/assistant"
	"finance-dashboard/internal/finance"
)

// REQUESTS START:

type SaveUserRequest struct {
	UserName string `json:"username"`
	FullName string `json:"fullname"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type UserLoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type CreateAccountRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"` // keep as string, parsed as decimal
	IsDefault bool   `json:"is_default"`
}

type CreateTransactionRequest struct {
	AccountID   string `json:"account_id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"` // "2006-01-02", empty means now
	IsRecurring bool   `json:"is_recurring"`
}

type ToolRequest struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

type ChatRequest struct {
	Message string              `json:"message"`
	History []assistant.Message `json:"history"`
}

type AnalyzeRequest struct {
	Question  string `json:"question"`
	AccountID string `json:"account_id"`
}

// REQUESTS END:

// RESPONSES:

type UserCreatedResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type SummaryResponse struct {
	Success bool                      `json:"success"`
	Data    *finance.FinancialSummary `json:"data,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

type AnalyzeResponse struct {
	Answer string `json:"answer"`
}

func httpStatusFromError(err error) int {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrNotFound:
		return 404 // not found
	case appErrors.ErrInvalidInput:
		return 400 // bad request
	case appErrors.ErrAuth:
		return 401 // unauthorized
	case appErrors.ErrAccessDenied:
		return 403 // access denied
	case appErrors.ErrConflict:
		return 409 // conflict
	case appErrors.ErrUnknownTool:
		return 400 // bad request
	case appErrors.ErrUpstream:
		return 502 // bad gateway
	default:
		return 500 // internal error
	}
}

func (req CreateTransactionRequest) ToDomain() (finance.CreateTransactionRequest, error) {
	domainReq := finance.CreateTransactionRequest{
		AccountID:   req.AccountID,
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		IsRecurring: req.IsRecurring,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return finance.CreateTransactionRequest{}, appErrors.Newf(appErrors.ErrInvalidInput, "invalid date: %s, expected format: 2006-01-02", req.Date)
		}
		domainReq.Date = date
	}
	return domainReq, nil
}

func CategoryListParams(params url.Values) (category string, limit int, err error) {
	category = params.Get("category")
	if category == "" {
		return "", 0, fmt.Errorf("%w", appErrors.New(appErrors.ErrInvalidInput, "category query parameter is required"))
	}

	if limitStr := params.Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return "", 0, appErrors.Newf(appErrors.ErrInvalidInput, "invalid limit: %s", limitStr)
		}
	}
	return category, limit, nil
}
