package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeSavings AccountType = "SAVINGS"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

const (
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusPending   = "PENDING"
)

// REQUESTS START:

type CreateAccountRequest struct {
	Name      string
	Type      string
	Balance   string // raw user input, parsed as decimal
	IsDefault bool
}

type CreateTransactionRequest struct {
	AccountID   string
	Type        string
	Amount      string
	Category    string
	Description string
	Date        time.Time
	IsRecurring bool
}

// REQUESTS END:

// MODELS:

type Account struct {
	ID        string
	UserID    string
	Name      string
	Type      AccountType
	Balance   decimal.Decimal
	IsDefault bool
	CreatedAt time.Time
}

type Transaction struct {
	ID          string
	UserID      string
	AccountID   string
	Type        TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
	IsRecurring bool
	Status      string
	CreatedAt   time.Time
}

// AccountWithCount is an account annotated with its transaction count,
// as returned by account listings.
type AccountWithCount struct {
	Account
	TransactionCount int
}

// TransactionWithAccount is a transaction annotated with its owning
// account's name and type, for cross-account listings.
type TransactionWithAccount struct {
	Transaction
	AccountName string
	AccountType AccountType
}

// CategorySpend is the summed EXPENSE amount per category over the
// trailing 30-day window. Derived, never persisted.
type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// PAYLOADS (decimal fields already converted, see serialize.go):

type AccountPayload struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Type               string               `json:"type"`
	Balance            float64              `json:"balance"`
	IsDefault          bool                 `json:"is_default"`
	CreatedAt          time.Time            `json:"created_at"`
	TransactionCount   int                  `json:"transaction_count"`
	RecentTransactions []TransactionPayload `json:"recent_transactions,omitempty"`
}

type TransactionPayload struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	AccountName string    `json:"account_name,omitempty"`
	AccountType string    `json:"account_type,omitempty"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	IsRecurring bool      `json:"is_recurring"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type AccountDetail struct {
	AccountPayload
	Transactions []TransactionPayload `json:"transactions"`
}

type SummaryTotals struct {
	TotalBalance      float64         `json:"total_balance"`
	TotalTransactions int             `json:"total_transactions"`
	AccountCount      int             `json:"account_count"`
	CategorySpending  []CategorySpend `json:"category_spending"`
}

type FinancialSummary struct {
	Accounts           []AccountPayload     `json:"accounts"`
	RecentTransactions []TransactionPayload `json:"recent_transactions"`
	Summary            SummaryTotals        `json:"summary"`
}
