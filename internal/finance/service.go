package finance

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	appErrors "finance-dashboard/errors"
	"finance-dashboard/internal/auth"
	"finance-dashboard/logging"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MAX_ACCOUNT_NAME_LENGTH    = 255
	MAX_CATEGORY_NAME_LENGTH   = 255
	MAX_DESCRIPTION_LENGTH     = 1000
	MAX_AMOUNT_LIMIT           = 999999999999999999
	DEFAULT_TRANSACTION_LIMIT  = 10
	RECENT_TRANSACTION_LIMIT   = 10
	ACCOUNT_PREVIEW_TXN_LIMIT  = 5
	CATEGORY_SPEND_WINDOW_DAYS = 30
)

type Storage interface {
	SaveUser(ctx context.Context, user auth.User) error
	ValidateUser(ctx context.Context, credentials auth.UserCredentialsPure) (auth.User, error)
	IsUserExists(ctx context.Context, username string) (bool, error)
	SaveSession(ctx context.Context, session auth.Session) error
	GetSessionByToken(ctx context.Context, token string) (auth.Session, error)
	UpdateSession(ctx context.Context, userID string, expireAt time.Time) error
	DeleteSession(ctx context.Context, userID string, token string) error

	// SaveAccount clears any other default of the same user in the same
	// storage transaction when account.IsDefault is set.
	SaveAccount(ctx context.Context, account Account) error
	CountAccounts(ctx context.Context, userID string) (int, error)
	GetAccounts(ctx context.Context, userID string) ([]AccountWithCount, error)
	GetAccountByID(ctx context.Context, userID string, accountID string) (Account, error)
	// SetDefaultAccount performs the clear-all/set-one update atomically.
	SetDefaultAccount(ctx context.Context, userID string, accountID string) (Account, error)

	// SaveTransaction adjusts the owning account's balance in the same
	// storage transaction.
	SaveTransaction(ctx context.Context, txn Transaction) error
	GetAccountTransactions(ctx context.Context, userID string, accountID string, limit int) ([]Transaction, error)
	CountAccountTransactions(ctx context.Context, userID string, accountID string) (int, error)
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]TransactionWithAccount, error)
	GetTransactionsByCategory(ctx context.Context, userID string, category string, limit int) ([]TransactionWithAccount, error)
	GetCategorySpending(ctx context.Context, userID string, txType TransactionType, since time.Time) ([]CategorySpend, error)
}

// CacheInvalidator signals that a cached route view is stale after a
// mutation. Fire-and-forget, callers never wait on it.
type CacheInvalidator interface {
	Invalidate(path string)
}

type logCacheInvalidator struct{}

func (logCacheInvalidator) Invalidate(path string) {
	logging.Logger.Debugf("route cache invalidated: %s", path)
}

func NewLogCacheInvalidator() CacheInvalidator {
	return logCacheInvalidator{}
}

type Dashboard struct {
	storage Storage
	cache   CacheInvalidator
}

func NewDashboard(s Storage, cache CacheInvalidator) Dashboard {
	if cache == nil {
		cache = NewLogCacheInvalidator()
	}
	return Dashboard{
		storage: s,
		cache:   cache,
	}
}

// --- USERS & SESSIONS --- //

func (d *Dashboard) RegisterUser(ctx context.Context, newUser auth.NewUser) (string, error) {
	if err := newUser.ValidateUserFields(); err != nil {
		return "", err
	}

	isUserExists, err := d.storage.IsUserExists(ctx, newUser.UserName)
	if err != nil {
		return "", fmt.Errorf("failed to check username availability: %w", err)
	}
	if isUserExists {
		return "", appErrors.Newf(appErrors.ErrConflict, "this '%s' username already taken", newUser.UserName)
	}

	hashedPassword, err := auth.HashPassword(newUser.PasswordPlain)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := auth.User{
		ID:             uuid.New().String(),
		UserName:       strings.ToLower(newUser.UserName),
		FullName:       CapitalizeFullName(newUser.FullName),
		Email:          strings.ToLower(newUser.Email),
		PasswordHashed: hashedPassword,
		CreatedAt:      time.Now().UTC(),
	}

	if err := d.storage.SaveUser(ctx, user); err != nil {
		return "", fmt.Errorf("failed to registration: %w", err)
	}

	credentials := auth.UserCredentialsPure{
		UserName:      newUser.UserName,
		PasswordPlain: newUser.PasswordPlain,
	}

	token, err := d.GenerateSession(ctx, credentials)
	if err != nil {
		return "", fmt.Errorf("registration successfully but failed to generate session: %w | try login", err)
	}
	return token, nil
}

func (d *Dashboard) GenerateSession(ctx context.Context, credentials auth.UserCredentialsPure) (string, error) {
	user, err := d.storage.ValidateUser(ctx, credentials)
	if err != nil {
		return "", fmt.Errorf("%w", err)
	}

	tokenByte := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, tokenByte); err != nil {
		return "", fmt.Errorf("failed to generate new session: %w", err)
	}

	token := hex.EncodeToString(tokenByte)
	now := time.Now().UTC()

	session := auth.Session{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: now,
		ExpireAt:  now.AddDate(0, 3, 0),
		UserID:    user.ID,
	}

	if err := d.storage.SaveSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// CheckSession resolves a session token to a user id, sliding the expiry
// forward when it is close to running out.
func (d *Dashboard) CheckSession(ctx context.Context, token string) (string, error) {
	session, err := d.storage.GetSessionByToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to get session by token: %w", err)
	}

	now := time.Now().UTC()
	if session.ExpireAt.Before(now) {
		return "", appErrors.New(appErrors.ErrAuth, "session expired, login again")
	}

	daysUntilExpiry := int(session.ExpireAt.Sub(now).Hours() / 24)
	if daysUntilExpiry <= 5 {
		newExpireAt := now.AddDate(0, 1, 0)
		if err := d.storage.UpdateSession(ctx, session.UserID, newExpireAt); err != nil {
			return "", fmt.Errorf("failed to update session: %w", err)
		}
	}

	return session.UserID, nil
}

func (d *Dashboard) LogoutUser(ctx context.Context, userID string, token string) error {
	if err := d.storage.DeleteSession(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

func CapitalizeFullName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// --- ACCOUNTS --- //

func (d *Dashboard) CreateAccount(ctx context.Context, userID string, req CreateAccountRequest) (AccountPayload, error) {
	if req.Name == "" {
		return AccountPayload{}, appErrors.New(appErrors.ErrInvalidInput, "account name is empty")
	}
	if len(req.Name) > MAX_ACCOUNT_NAME_LENGTH {
		return AccountPayload{}, appErrors.Newf(appErrors.ErrInvalidInput, "account name so long, maximum allowed length is: %d", MAX_ACCOUNT_NAME_LENGTH)
	}

	accountType := AccountType(strings.ToUpper(req.Type))
	if accountType != AccountTypeCurrent && accountType != AccountTypeSavings {
		return AccountPayload{}, appErrors.Newf(appErrors.ErrInvalidInput, "invalid account type: %s", req.Type)
	}

	balance, err := decimal.NewFromString(strings.TrimSpace(req.Balance))
	if err != nil {
		return AccountPayload{}, appErrors.Newf(appErrors.ErrInvalidInput, "invalid balance amount: %s", req.Balance)
	}
	if balance.Abs().GreaterThan(decimal.NewFromInt(MAX_AMOUNT_LIMIT)) {
		return AccountPayload{}, appErrors.Newf(appErrors.ErrInvalidInput, "maximum allowed balance is: %d", MAX_AMOUNT_LIMIT)
	}

	existing, err := d.storage.CountAccounts(ctx, userID)
	if err != nil {
		return AccountPayload{}, fmt.Errorf("failed to count accounts: %w", err)
	}

	// first account is always the default one
	shouldBeDefault := req.IsDefault
	if existing == 0 {
		shouldBeDefault = true
	}

	account := Account{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      req.Name,
		Type:      accountType,
		Balance:   balance,
		IsDefault: shouldBeDefault,
		CreatedAt: time.Now().UTC(),
	}

	if err := d.storage.SaveAccount(ctx, account); err != nil {
		return AccountPayload{}, fmt.Errorf("failed to save account: %w", err)
	}

	d.cache.Invalidate("/dashboard")
	return SerializeAccount(account), nil
}

func (d *Dashboard) GetUserAccounts(ctx context.Context, userID string) ([]AccountPayload, error) {
	accounts, err := d.storage.GetAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	payloads := make([]AccountPayload, 0, len(accounts))
	for _, account := range accounts {
		payloads = append(payloads, SerializeAccountWithCount(account))
	}
	return payloads, nil
}

func (d *Dashboard) GetAccountWithTransactions(ctx context.Context, userID string, accountID string) (AccountDetail, error) {
	account, err := d.storage.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return AccountDetail{}, fmt.Errorf("failed to get account: %w", err)
	}

	transactions, err := d.storage.GetAccountTransactions(ctx, userID, accountID, 0)
	if err != nil {
		return AccountDetail{}, fmt.Errorf("failed to get account transactions: %w", err)
	}

	count, err := d.storage.CountAccountTransactions(ctx, userID, accountID)
	if err != nil {
		return AccountDetail{}, fmt.Errorf("failed to count account transactions: %w", err)
	}

	detail := AccountDetail{
		AccountPayload: SerializeAccount(account),
		Transactions:   make([]TransactionPayload, 0, len(transactions)),
	}
	detail.TransactionCount = count
	for _, txn := range transactions {
		detail.Transactions = append(detail.Transactions, SerializeTransaction(txn))
	}
	return detail, nil
}

func (d *Dashboard) UpdateDefaultAccount(ctx context.Context, userID string, accountID string) (AccountPayload, error) {
	account, err := d.storage.SetDefaultAccount(ctx, userID, accountID)
	if err != nil {
		return AccountPayload{}, fmt.Errorf("failed to update default account: %w", err)
	}

	d.cache.Invalidate("/dashboard")
	return SerializeAccount(account), nil
}

// --- TRANSACTIONS --- //

func (d *Dashboard) CreateTransaction(ctx context.Context, userID string, req CreateTransactionRequest) (TransactionPayload, error) {
	txnType := TransactionType(strings.ToUpper(req.Type))
	if txnType != TransactionTypeIncome && txnType != TransactionTypeExpense {
		return TransactionPayload{}, appErrors.Newf(appErrors.ErrInvalidInput, "invalid transaction type: %s", req.Type)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return TransactionPayload{}, appErrors.Newf(appErrors.ErrInvalidInput, "invalid transaction amount: %s", req.Amount)
	}
	if !amount.IsPositive() {
		return TransactionPayload{}, appErrors.New(appErrors.ErrInvalidInput, "transaction amount must be positive, sign is implied by type")
	}
	if amount.GreaterThan(decimal.NewFromInt(MAX_AMOUNT_LIMIT)) {
		return TransactionPayload{}, appErrors.Newf(appErrors.ErrInvalidInput, "maximum allowed amount per transaction is: %d", MAX_AMOUNT_LIMIT)
	}
	if req.Category == "" {
		return TransactionPayload{}, appErrors.New(appErrors.ErrInvalidInput, "category is empty")
	}
	if len(req.Category) > MAX_CATEGORY_NAME_LENGTH {
		return TransactionPayload{}, appErrors.New(appErrors.ErrInvalidInput, "category name so long")
	}
	if len(req.Description) > MAX_DESCRIPTION_LENGTH {
		return TransactionPayload{}, appErrors.Newf(appErrors.ErrInvalidInput, "description so long, maximum allowed length is: %d", MAX_DESCRIPTION_LENGTH)
	}

	// ownership check before writing
	if _, err := d.storage.GetAccountByID(ctx, userID, req.AccountID); err != nil {
		return TransactionPayload{}, fmt.Errorf("failed to get account: %w", err)
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	txn := Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		AccountID:   req.AccountID,
		Type:        txnType,
		Amount:      amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		IsRecurring: req.IsRecurring,
		Status:      TransactionStatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}

	if err := d.storage.SaveTransaction(ctx, txn); err != nil {
		return TransactionPayload{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	d.cache.Invalidate("/dashboard")
	return SerializeTransaction(txn), nil
}

func (d *Dashboard) GetTransactionsByCategory(ctx context.Context, userID string, category string, limit int) ([]TransactionPayload, error) {
	if category == "" {
		return nil, appErrors.New(appErrors.ErrInvalidInput, "category is empty")
	}
	if limit <= 0 {
		limit = DEFAULT_TRANSACTION_LIMIT
	}

	transactions, err := d.storage.GetTransactionsByCategory(ctx, userID, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions by category: %w", err)
	}

	payloads := make([]TransactionPayload, 0, len(transactions))
	for _, txn := range transactions {
		payloads = append(payloads, SerializeTransactionWithAccount(txn))
	}
	return payloads, nil
}

// --- SUMMARY --- //

// GetFinancialSummary builds the dashboard snapshot: every account with its
// count and latest transactions, the latest transactions across accounts,
// and the aggregated totals with the 30-day category spend breakdown.
func (d *Dashboard) GetFinancialSummary(ctx context.Context, userID string) (FinancialSummary, error) {
	accounts, err := d.storage.GetAccounts(ctx, userID)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("failed to get accounts: %w", err)
	}

	summary := FinancialSummary{
		Accounts:           make([]AccountPayload, 0, len(accounts)),
		RecentTransactions: []TransactionPayload{},
	}

	totalBalance := 0.0
	totalTransactions := 0
	for _, account := range accounts {
		payload := SerializeAccountWithCount(account)

		preview, err := d.storage.GetAccountTransactions(ctx, userID, account.ID, ACCOUNT_PREVIEW_TXN_LIMIT)
		if err != nil {
			return FinancialSummary{}, fmt.Errorf("failed to get account transactions: %w", err)
		}
		for _, txn := range preview {
			payload.RecentTransactions = append(payload.RecentTransactions, SerializeTransaction(txn))
		}

		summary.Accounts = append(summary.Accounts, payload)
		totalBalance += payload.Balance
		totalTransactions += account.TransactionCount
	}

	recent, err := d.storage.GetRecentTransactions(ctx, userID, RECENT_TRANSACTION_LIMIT)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("failed to get recent transactions: %w", err)
	}
	for _, txn := range recent {
		summary.RecentTransactions = append(summary.RecentTransactions, SerializeTransactionWithAccount(txn))
	}

	since := time.Now().UTC().AddDate(0, 0, -CATEGORY_SPEND_WINDOW_DAYS)
	spending, err := d.storage.GetCategorySpending(ctx, userID, TransactionTypeExpense, since)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("failed to get category spending: %w", err)
	}

	summary.Summary = SummaryTotals{
		TotalBalance:      totalBalance,
		TotalTransactions: totalTransactions,
		AccountCount:      len(accounts),
		CategorySpending:  spending,
	}
	return summary, nil
}
