package finance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	appErrors "finance-dashboard/errors"
	"finance-dashboard/internal/auth"
	"finance-dashboard/internal/finance"
	"finance-dashboard/internal/storage"
	"finance-dashboard/logging"

	"github.com/stretchr/testify/require"
)

func init() {
	logging.InitForTests()
}

func newTestDashboard() finance.Dashboard {
	return finance.NewDashboard(storage.NewInMemoryStorage(), nil)
}

func TestUserSessionLifecycle(t *testing.T) {
	service := newTestDashboard()
	ctx := context.Background()

	token, err := service.RegisterUser(ctx, auth.NewUser{
		UserName:      "john_doe",
		FullName:      "john doe",
		Email:         "john.doe@example.com",
		PasswordPlain: "Secret123!",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := service.CheckSession(ctx, token)
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	// second registration with the same username conflicts
	_, err = service.RegisterUser(ctx, auth.NewUser{
		UserName:      "john_doe",
		FullName:      "another john",
		Email:         "other@example.com",
		PasswordPlain: "Another123!",
	})
	require.Equal(t, appErrors.ErrConflict, appErrors.CodeOf(err))

	// wrong password is rejected
	_, err = service.GenerateSession(ctx, auth.UserCredentialsPure{
		UserName:      "john_doe",
		PasswordPlain: "wrong",
	})
	require.Equal(t, appErrors.ErrAuth, appErrors.CodeOf(err))

	require.NoError(t, service.LogoutUser(ctx, userID, token))
	_, err = service.CheckSession(ctx, token)
	require.Error(t, err)
}

func TestDefaultAccountSwitch(t *testing.T) {
	service := newTestDashboard()
	ctx := context.Background()
	userID := "user-1"

	checking, err := service.CreateAccount(ctx, userID, finance.CreateAccountRequest{
		Name: "Checking", Type: "CURRENT", Balance: "500.00",
	})
	require.NoError(t, err)
	require.True(t, checking.IsDefault, "first account becomes default")

	savings, err := service.CreateAccount(ctx, userID, finance.CreateAccountRequest{
		Name: "Savings", Type: "SAVINGS", Balance: "1000.00",
	})
	require.NoError(t, err)
	require.False(t, savings.IsDefault)

	updated, err := service.UpdateDefaultAccount(ctx, userID, savings.ID)
	require.NoError(t, err)
	require.True(t, updated.IsDefault)

	accounts, err := service.GetUserAccounts(ctx, userID)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	defaults := 0
	for _, account := range accounts {
		if account.IsDefault {
			defaults++
			require.Equal(t, savings.ID, account.ID)
		}
	}
	require.Equal(t, 1, defaults)

	_, err = service.UpdateDefaultAccount(ctx, userID, "no-such-account")
	require.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
}

func TestConcurrentDefaultSwitchKeepsOneDefault(t *testing.T) {
	service := newTestDashboard()
	ctx := context.Background()
	userID := "user-1"

	first, err := service.CreateAccount(ctx, userID, finance.CreateAccountRequest{
		Name: "First", Type: "CURRENT", Balance: "0",
	})
	require.NoError(t, err)
	second, err := service.CreateAccount(ctx, userID, finance.CreateAccountRequest{
		Name: "Second", Type: "CURRENT", Balance: "0",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		accountID := first.ID
		if i%2 == 0 {
			accountID = second.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.UpdateDefaultAccount(ctx, userID, accountID)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	accounts, err := service.GetUserAccounts(ctx, userID)
	require.NoError(t, err)

	defaults := 0
	for _, account := range accounts {
		if account.IsDefault {
			defaults++
		}
	}
	require.Equal(t, 1, defaults, "exactly one default regardless of interleaving")
}

func TestTransactionsAdjustBalance(t *testing.T) {
	service := newTestDashboard()
	ctx := context.Background()
	userID := "user-1"

	account, err := service.CreateAccount(ctx, userID, finance.CreateAccountRequest{
		Name: "Checking", Type: "CURRENT", Balance: "500.00",
	})
	require.NoError(t, err)

	_, err = service.CreateTransaction(ctx, userID, finance.CreateTransactionRequest{
		AccountID: account.ID, Type: "INCOME", Amount: "100.00", Category: "salary",
	})
	require.NoError(t, err)

	_, err = service.CreateTransaction(ctx, userID, finance.CreateTransactionRequest{
		AccountID: account.ID, Type: "EXPENSE", Amount: "50.00", Category: "food", Description: "groceries",
	})
	require.NoError(t, err)

	detail, err := service.GetAccountWithTransactions(ctx, userID, account.ID)
	require.NoError(t, err)
	require.Equal(t, 550.00, detail.Balance)
	require.Equal(t, 2, detail.TransactionCount)
	require.Len(t, detail.Transactions, 2)
}

func TestAccountsAreIsolatedPerUser(t *testing.T) {
	service := newTestDashboard()
	ctx := context.Background()

	account, err := service.CreateAccount(ctx, "owner", finance.CreateAccountRequest{
		Name: "Private", Type: "CURRENT", Balance: "100",
	})
	require.NoError(t, err)

	_, err = service.GetAccountWithTransactions(ctx, "intruder", account.ID)
	require.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))

	_, err = service.CreateTransaction(ctx, "intruder", finance.CreateTransactionRequest{
		AccountID: account.ID, Type: "EXPENSE", Amount: "10", Category: "food",
	})
	require.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))

	accounts, err := service.GetUserAccounts(ctx, "intruder")
	require.NoError(t, err)
	require.Empty(t, accounts)
}

func TestCategorySpendingWindow(t *testing.T) {
	service := newTestDashboard()
	ctx := context.Background()
	userID := "user-1"

	account, err := service.CreateAccount(ctx, userID, finance.CreateAccountRequest{
		Name: "Checking", Type: "CURRENT", Balance: "1000",
	})
	require.NoError(t, err)

	now := time.Now().UTC()

	// outside the 30-day window, must not show up in the breakdown
	_, err = service.CreateTransaction(ctx, userID, finance.CreateTransactionRequest{
		AccountID: account.ID, Type: "EXPENSE", Amount: "50.00", Category: "food",
		Date: now.AddDate(0, 0, -31),
	})
	require.NoError(t, err)

	_, err = service.CreateTransaction(ctx, userID, finance.CreateTransactionRequest{
		AccountID: account.ID, Type: "EXPENSE", Amount: "30.00", Category: "food",
		Date: now.AddDate(0, 0, -10),
	})
	require.NoError(t, err)

	// income never counts as spending
	_, err = service.CreateTransaction(ctx, userID, finance.CreateTransactionRequest{
		AccountID: account.ID, Type: "INCOME", Amount: "200.00", Category: "salary",
		Date: now.AddDate(0, 0, -5),
	})
	require.NoError(t, err)

	summary, err := service.GetFinancialSummary(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []finance.CategorySpend{{Category: "food", Amount: 30.00}}, summary.Summary.CategorySpending)
	require.Equal(t, 3, summary.Summary.TotalTransactions)
	require.Equal(t, 1, summary.Summary.AccountCount)
	// 1000 - 50 - 30 + 200
	require.Equal(t, 1120.00, summary.Summary.TotalBalance)
}

func TestRecentTransactionsCarryAccountInfo(t *testing.T) {
	service := newTestDashboard()
	ctx := context.Background()
	userID := "user-1"

	account, err := service.CreateAccount(ctx, userID, finance.CreateAccountRequest{
		Name: "Checking", Type: "CURRENT", Balance: "100",
	})
	require.NoError(t, err)

	_, err = service.CreateTransaction(ctx, userID, finance.CreateTransactionRequest{
		AccountID: account.ID, Type: "EXPENSE", Amount: "12.50", Category: "transport",
	})
	require.NoError(t, err)

	summary, err := service.GetFinancialSummary(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summary.RecentTransactions, 1)
	require.Equal(t, "Checking", summary.RecentTransactions[0].AccountName)
	require.Equal(t, "CURRENT", summary.RecentTransactions[0].AccountType)
	require.Equal(t, 12.50, summary.RecentTransactions[0].Amount)
}
