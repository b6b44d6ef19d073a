package finance

import (
	"context"
	"testing"
	"time"

	appErrors "finance-dashboard/errors"
	"finance-dashboard/internal/auth"
	"finance-dashboard/logging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.InitForTests()
}

// mockStorage lets each test plug in just the calls it cares about.
type mockStorage struct {
	saveUserFn                 func(ctx context.Context, user auth.User) error
	validateUserFn             func(ctx context.Context, credentials auth.UserCredentialsPure) (auth.User, error)
	isUserExistsFn             func(ctx context.Context, username string) (bool, error)
	saveSessionFn              func(ctx context.Context, session auth.Session) error
	getSessionByTokenFn        func(ctx context.Context, token string) (auth.Session, error)
	updateSessionFn            func(ctx context.Context, userID string, expireAt time.Time) error
	deleteSessionFn            func(ctx context.Context, userID string, token string) error
	saveAccountFn              func(ctx context.Context, account Account) error
	countAccountsFn            func(ctx context.Context, userID string) (int, error)
	getAccountsFn              func(ctx context.Context, userID string) ([]AccountWithCount, error)
	getAccountByIDFn           func(ctx context.Context, userID string, accountID string) (Account, error)
	setDefaultAccountFn        func(ctx context.Context, userID string, accountID string) (Account, error)
	saveTransactionFn          func(ctx context.Context, txn Transaction) error
	getAccountTransactionsFn   func(ctx context.Context, userID string, accountID string, limit int) ([]Transaction, error)
	countAccountTransactionsFn func(ctx context.Context, userID string, accountID string) (int, error)
	getRecentTransactionsFn    func(ctx context.Context, userID string, limit int) ([]TransactionWithAccount, error)
	getByCategoryFn            func(ctx context.Context, userID string, category string, limit int) ([]TransactionWithAccount, error)
	getCategorySpendingFn      func(ctx context.Context, userID string, txType TransactionType, since time.Time) ([]CategorySpend, error)
}

func (m *mockStorage) SaveUser(ctx context.Context, user auth.User) error {
	if m.saveUserFn != nil {
		return m.saveUserFn(ctx, user)
	}
	return nil
}

func (m *mockStorage) ValidateUser(ctx context.Context, credentials auth.UserCredentialsPure) (auth.User, error) {
	if m.validateUserFn != nil {
		return m.validateUserFn(ctx, credentials)
	}
	return auth.User{ID: "user-1"}, nil
}

func (m *mockStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	if m.isUserExistsFn != nil {
		return m.isUserExistsFn(ctx, username)
	}
	return false, nil
}

func (m *mockStorage) SaveSession(ctx context.Context, session auth.Session) error {
	if m.saveSessionFn != nil {
		return m.saveSessionFn(ctx, session)
	}
	return nil
}

func (m *mockStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	if m.getSessionByTokenFn != nil {
		return m.getSessionByTokenFn(ctx, token)
	}
	return auth.Session{}, appErrors.New(appErrors.ErrNotFound, "session not found")
}

func (m *mockStorage) UpdateSession(ctx context.Context, userID string, expireAt time.Time) error {
	if m.updateSessionFn != nil {
		return m.updateSessionFn(ctx, userID, expireAt)
	}
	return nil
}

func (m *mockStorage) DeleteSession(ctx context.Context, userID string, token string) error {
	if m.deleteSessionFn != nil {
		return m.deleteSessionFn(ctx, userID, token)
	}
	return nil
}

func (m *mockStorage) SaveAccount(ctx context.Context, account Account) error {
	if m.saveAccountFn != nil {
		return m.saveAccountFn(ctx, account)
	}
	return nil
}

func (m *mockStorage) CountAccounts(ctx context.Context, userID string) (int, error) {
	if m.countAccountsFn != nil {
		return m.countAccountsFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockStorage) GetAccounts(ctx context.Context, userID string) ([]AccountWithCount, error) {
	if m.getAccountsFn != nil {
		return m.getAccountsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockStorage) GetAccountByID(ctx context.Context, userID string, accountID string) (Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(ctx, userID, accountID)
	}
	return Account{}, appErrors.New(appErrors.ErrNotFound, "account not found")
}

func (m *mockStorage) SetDefaultAccount(ctx context.Context, userID string, accountID string) (Account, error) {
	if m.setDefaultAccountFn != nil {
		return m.setDefaultAccountFn(ctx, userID, accountID)
	}
	return Account{}, appErrors.New(appErrors.ErrNotFound, "account not found")
}

func (m *mockStorage) SaveTransaction(ctx context.Context, txn Transaction) error {
	if m.saveTransactionFn != nil {
		return m.saveTransactionFn(ctx, txn)
	}
	return nil
}

func (m *mockStorage) GetAccountTransactions(ctx context.Context, userID string, accountID string, limit int) ([]Transaction, error) {
	if m.getAccountTransactionsFn != nil {
		return m.getAccountTransactionsFn(ctx, userID, accountID, limit)
	}
	return nil, nil
}

func (m *mockStorage) CountAccountTransactions(ctx context.Context, userID string, accountID string) (int, error) {
	if m.countAccountTransactionsFn != nil {
		return m.countAccountTransactionsFn(ctx, userID, accountID)
	}
	return 0, nil
}

func (m *mockStorage) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]TransactionWithAccount, error) {
	if m.getRecentTransactionsFn != nil {
		return m.getRecentTransactionsFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockStorage) GetTransactionsByCategory(ctx context.Context, userID string, category string, limit int) ([]TransactionWithAccount, error) {
	if m.getByCategoryFn != nil {
		return m.getByCategoryFn(ctx, userID, category, limit)
	}
	return nil, nil
}

func (m *mockStorage) GetCategorySpending(ctx context.Context, userID string, txType TransactionType, since time.Time) ([]CategorySpend, error) {
	if m.getCategorySpendingFn != nil {
		return m.getCategorySpendingFn(ctx, userID, txType, since)
	}
	return nil, nil
}

func TestCreateAccountValidation(t *testing.T) {
	service := NewDashboard(&mockStorage{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateAccountRequest
	}{
		{"empty name", CreateAccountRequest{Name: "", Type: "CURRENT", Balance: "100"}},
		{"unknown type", CreateAccountRequest{Name: "Checking", Type: "CRYPTO", Balance: "100"}},
		{"malformed balance", CreateAccountRequest{Name: "Checking", Type: "CURRENT", Balance: "12,34"}},
		{"empty balance", CreateAccountRequest{Name: "Checking", Type: "CURRENT", Balance: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateAccount(ctx, "user-1", tt.req)
			require.Error(t, err)
			require.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
		})
	}
}

func TestCreateAccountFirstIsDefault(t *testing.T) {
	var saved Account
	storage := &mockStorage{
		countAccountsFn: func(ctx context.Context, userID string) (int, error) {
			return 0, nil
		},
		saveAccountFn: func(ctx context.Context, account Account) error {
			saved = account
			return nil
		},
	}
	service := NewDashboard(storage, nil)

	// caller did not ask for default, but the very first account becomes one
	payload, err := service.CreateAccount(context.Background(), "user-1", CreateAccountRequest{
		Name:      "Checking",
		Type:      "current",
		Balance:   "500.00",
		IsDefault: false,
	})
	require.NoError(t, err)
	require.True(t, payload.IsDefault)
	require.True(t, saved.IsDefault)
	require.Equal(t, AccountTypeCurrent, saved.Type)
	require.True(t, saved.Balance.Equal(decimal.NewFromInt(500)))
}

func TestCreateAccountKeepsCallerChoiceWhenNotFirst(t *testing.T) {
	storage := &mockStorage{
		countAccountsFn: func(ctx context.Context, userID string) (int, error) {
			return 2, nil
		},
	}
	service := NewDashboard(storage, nil)

	payload, err := service.CreateAccount(context.Background(), "user-1", CreateAccountRequest{
		Name:      "Savings",
		Type:      "SAVINGS",
		Balance:   "1000",
		IsDefault: false,
	})
	require.NoError(t, err)
	require.False(t, payload.IsDefault)
}

func TestCreateTransactionValidation(t *testing.T) {
	service := NewDashboard(&mockStorage{}, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateTransactionRequest
	}{
		{"unknown type", CreateTransactionRequest{AccountID: "acc-1", Type: "TRANSFER", Amount: "10", Category: "food"}},
		{"zero amount", CreateTransactionRequest{AccountID: "acc-1", Type: "EXPENSE", Amount: "0", Category: "food"}},
		{"negative amount", CreateTransactionRequest{AccountID: "acc-1", Type: "EXPENSE", Amount: "-5", Category: "food"}},
		{"empty category", CreateTransactionRequest{AccountID: "acc-1", Type: "EXPENSE", Amount: "10", Category: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateTransaction(ctx, "user-1", tt.req)
			require.Error(t, err)
			require.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
		})
	}
}

func TestCreateTransactionRequiresOwnedAccount(t *testing.T) {
	storage := &mockStorage{
		getAccountByIDFn: func(ctx context.Context, userID string, accountID string) (Account, error) {
			return Account{}, appErrors.New(appErrors.ErrNotFound, "account not found")
		},
	}
	service := NewDashboard(storage, nil)

	_, err := service.CreateTransaction(context.Background(), "intruder", CreateTransactionRequest{
		AccountID: "acc-1",
		Type:      "EXPENSE",
		Amount:    "10",
		Category:  "food",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
}

func TestGetTransactionsByCategoryDefaultLimit(t *testing.T) {
	var gotLimit int
	storage := &mockStorage{
		getByCategoryFn: func(ctx context.Context, userID string, category string, limit int) ([]TransactionWithAccount, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	service := NewDashboard(storage, nil)

	_, err := service.GetTransactionsByCategory(context.Background(), "user-1", "food", 0)
	require.NoError(t, err)
	require.Equal(t, DEFAULT_TRANSACTION_LIMIT, gotLimit)

	_, err = service.GetTransactionsByCategory(context.Background(), "user-1", "", 5)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
}

func TestGetFinancialSummaryTotals(t *testing.T) {
	accounts := []AccountWithCount{
		{Account: Account{ID: "acc-1", Name: "Checking", Type: AccountTypeCurrent, Balance: decimal.NewFromFloat(100.50)}, TransactionCount: 1},
		{Account: Account{ID: "acc-2", Name: "Savings", Type: AccountTypeSavings, Balance: decimal.NewFromFloat(-20.00)}, TransactionCount: 2},
		{Account: Account{ID: "acc-3", Name: "Spare", Type: AccountTypeCurrent, Balance: decimal.Zero}, TransactionCount: 0},
	}

	var spendingSince time.Time
	storage := &mockStorage{
		getAccountsFn: func(ctx context.Context, userID string) ([]AccountWithCount, error) {
			return accounts, nil
		},
		getCategorySpendingFn: func(ctx context.Context, userID string, txType TransactionType, since time.Time) ([]CategorySpend, error) {
			spendingSince = since
			require.Equal(t, TransactionTypeExpense, txType)
			return []CategorySpend{{Category: "food", Amount: 42.50}}, nil
		},
	}
	service := NewDashboard(storage, nil)

	summary, err := service.GetFinancialSummary(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, summary.Accounts, 3)
	require.Equal(t, 80.50, summary.Summary.TotalBalance)
	require.Equal(t, 3, summary.Summary.TotalTransactions)
	require.Equal(t, 3, summary.Summary.AccountCount)
	require.Equal(t, []CategorySpend{{Category: "food", Amount: 42.50}}, summary.Summary.CategorySpending)

	// spend window reaches 30 days back
	expected := time.Now().UTC().AddDate(0, 0, -CATEGORY_SPEND_WINDOW_DAYS)
	require.WithinDuration(t, expected, spendingSince, time.Minute)
}

func TestCheckSessionExpired(t *testing.T) {
	storage := &mockStorage{
		getSessionByTokenFn: func(ctx context.Context, token string) (auth.Session, error) {
			return auth.Session{
				UserID:   "user-1",
				Token:    token,
				ExpireAt: time.Now().UTC().Add(-time.Hour),
			}, nil
		},
	}
	service := NewDashboard(storage, nil)

	_, err := service.CheckSession(context.Background(), "stale-token")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAuth, appErrors.CodeOf(err))
}

func TestCheckSessionSlidesExpiry(t *testing.T) {
	updated := false
	storage := &mockStorage{
		getSessionByTokenFn: func(ctx context.Context, token string) (auth.Session, error) {
			return auth.Session{
				UserID:   "user-1",
				Token:    token,
				ExpireAt: time.Now().UTC().Add(48 * time.Hour),
			}, nil
		},
		updateSessionFn: func(ctx context.Context, userID string, expireAt time.Time) error {
			updated = true
			require.True(t, expireAt.After(time.Now().UTC().AddDate(0, 0, 20)))
			return nil
		},
	}
	service := NewDashboard(storage, nil)

	userID, err := service.CheckSession(context.Background(), "near-expiry-token")
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
	require.True(t, updated)
}

func TestRegisterUserConflict(t *testing.T) {
	storage := &mockStorage{
		isUserExistsFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	service := NewDashboard(storage, nil)

	_, err := service.RegisterUser(context.Background(), auth.NewUser{
		UserName:      "john",
		FullName:      "john doe",
		Email:         "john@example.com",
		PasswordPlain: "Secret123!",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict, appErrors.CodeOf(err))
}

func TestCapitalizeFullName(t *testing.T) {
	require.Equal(t, "John Doe", CapitalizeFullName("john doe"))
	require.Equal(t, "John", CapitalizeFullName("  john  "))
	require.Equal(t, "", CapitalizeFullName(""))
}
