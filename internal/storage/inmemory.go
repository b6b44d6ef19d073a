package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	appErrors "finance-dashboard/errors"
	"finance-dashboard/internal/auth"
	"finance-dashboard/internal/finance"

	"github.com/shopspring/decimal"
)

// InMemoryStorage is a mutex-guarded Storage used by tests and local runs
// without a database. The default-account and balance updates hold the lock
// for the whole operation, matching the atomicity of the MySQL transactions.
type InMemoryStorage struct {
	mu           sync.Mutex
	users        []auth.User
	sessions     []auth.Session
	accounts     []finance.Account
	transactions []finance.Transaction
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{}
}

// --- USERS & SESSIONS --- //

func (inMem *InMemoryStorage) SaveUser(ctx context.Context, user auth.User) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, u := range inMem.users {
		if u.UserName == user.UserName {
			return appErrors.New(appErrors.ErrConflict, "The username is already taken.")
		}
	}
	inMem.users = append(inMem.users, user)
	return nil
}

func (inMem *InMemoryStorage) ValidateUser(ctx context.Context, credentials auth.UserCredentialsPure) (auth.User, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, user := range inMem.users {
		if user.UserName == strings.ToLower(credentials.UserName) {
			if auth.ComparePasswords(user.PasswordHashed, credentials.PasswordPlain) {
				return user, nil
			}
			return auth.User{}, appErrors.New(appErrors.ErrAuth, "Username or password is wrong.")
		}
	}
	return auth.User{}, appErrors.New(appErrors.ErrAuth, "Username or password is wrong.")
}

func (inMem *InMemoryStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, user := range inMem.users {
		if user.UserName == strings.ToLower(username) {
			return true, nil
		}
	}
	return false, nil
}

func (inMem *InMemoryStorage) SaveSession(ctx context.Context, session auth.Session) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.sessions = append(inMem.sessions, session)
	return nil
}

func (inMem *InMemoryStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, session := range inMem.sessions {
		if session.Token == strings.TrimSpace(token) {
			return session, nil
		}
	}
	return auth.Session{}, appErrors.New(appErrors.ErrAuth, "Session not found, login again.")
}

func (inMem *InMemoryStorage) UpdateSession(ctx context.Context, userID string, expireAt time.Time) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, session := range inMem.sessions {
		if session.UserID == userID {
			inMem.sessions[i].ExpireAt = expireAt
		}
	}
	return nil
}

func (inMem *InMemoryStorage) DeleteSession(ctx context.Context, userID string, token string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, session := range inMem.sessions {
		if session.UserID == userID && session.Token == token {
			inMem.sessions = append(inMem.sessions[:i], inMem.sessions[i+1:]...)
			return nil
		}
	}
	return appErrors.New(appErrors.ErrNotFound, "Session not found.")
}

// --- ACCOUNTS --- //

func (inMem *InMemoryStorage) SaveAccount(ctx context.Context, account finance.Account) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	if account.IsDefault {
		for i, a := range inMem.accounts {
			if a.UserID == account.UserID {
				inMem.accounts[i].IsDefault = false
			}
		}
	}
	inMem.accounts = append(inMem.accounts, account)
	return nil
}

func (inMem *InMemoryStorage) CountAccounts(ctx context.Context, userID string) (int, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	count := 0
	for _, account := range inMem.accounts {
		if account.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (inMem *InMemoryStorage) GetAccounts(ctx context.Context, userID string) ([]finance.AccountWithCount, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	var accounts []finance.AccountWithCount
	for _, account := range inMem.accounts {
		if account.UserID != userID {
			continue
		}
		count := 0
		for _, txn := range inMem.transactions {
			if txn.AccountID == account.ID {
				count++
			}
		}
		accounts = append(accounts, finance.AccountWithCount{Account: account, TransactionCount: count})
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (inMem *InMemoryStorage) GetAccountByID(ctx context.Context, userID string, accountID string) (finance.Account, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, account := range inMem.accounts {
		if account.ID == accountID && account.UserID == userID {
			return account, nil
		}
	}
	return finance.Account{}, appErrors.New(appErrors.ErrNotFound, "Account not found.")
}

func (inMem *InMemoryStorage) SetDefaultAccount(ctx context.Context, userID string, accountID string) (finance.Account, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	target := -1
	for i, account := range inMem.accounts {
		if account.ID == accountID && account.UserID == userID {
			target = i
			break
		}
	}
	if target == -1 {
		return finance.Account{}, appErrors.New(appErrors.ErrNotFound, "Account not found.")
	}

	for i, account := range inMem.accounts {
		if account.UserID == userID {
			inMem.accounts[i].IsDefault = false
		}
	}
	inMem.accounts[target].IsDefault = true
	return inMem.accounts[target], nil
}

// --- TRANSACTIONS --- //

func (inMem *InMemoryStorage) SaveTransaction(ctx context.Context, t finance.Transaction) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, account := range inMem.accounts {
		if account.ID == t.AccountID && account.UserID == t.UserID {
			delta := t.Amount
			if t.Type == finance.TransactionTypeExpense {
				delta = delta.Neg()
			}
			inMem.accounts[i].Balance = account.Balance.Add(delta)
			inMem.transactions = append(inMem.transactions, t)
			return nil
		}
	}
	return appErrors.New(appErrors.ErrNotFound, "Account not found.")
}

func (inMem *InMemoryStorage) GetAccountTransactions(ctx context.Context, userID string, accountID string, limit int) ([]finance.Transaction, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	var transactions []finance.Transaction
	for _, txn := range inMem.transactions {
		if txn.UserID == userID && txn.AccountID == accountID {
			transactions = append(transactions, txn)
		}
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	if limit > 0 && len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

func (inMem *InMemoryStorage) CountAccountTransactions(ctx context.Context, userID string, accountID string) (int, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	count := 0
	for _, txn := range inMem.transactions {
		if txn.UserID == userID && txn.AccountID == accountID {
			count++
		}
	}
	return count, nil
}

func (inMem *InMemoryStorage) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]finance.TransactionWithAccount, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	var transactions []finance.TransactionWithAccount
	for _, txn := range inMem.transactions {
		if txn.UserID == userID {
			transactions = append(transactions, inMem.annotate(txn))
		}
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	if limit > 0 && len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

func (inMem *InMemoryStorage) GetTransactionsByCategory(ctx context.Context, userID string, category string, limit int) ([]finance.TransactionWithAccount, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	var transactions []finance.TransactionWithAccount
	for _, txn := range inMem.transactions {
		if txn.UserID == userID && txn.Category == category {
			transactions = append(transactions, inMem.annotate(txn))
		}
	}
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
	if limit > 0 && len(transactions) > limit {
		transactions = transactions[:limit]
	}
	return transactions, nil
}

func (inMem *InMemoryStorage) GetCategorySpending(ctx context.Context, userID string, txType finance.TransactionType, since time.Time) ([]finance.CategorySpend, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	totals := make(map[string]decimal.Decimal)
	for _, txn := range inMem.transactions {
		if txn.UserID != userID || txn.Type != txType || txn.Date.Before(since) {
			continue
		}
		totals[txn.Category] = totals[txn.Category].Add(txn.Amount)
	}

	var spending []finance.CategorySpend
	for category, total := range totals {
		spending = append(spending, finance.CategorySpend{Category: category, Amount: total.InexactFloat64()})
	}
	sort.SliceStable(spending, func(i, j int) bool {
		return spending[i].Amount > spending[j].Amount
	})
	return spending, nil
}

// caller must hold the lock
func (inMem *InMemoryStorage) annotate(txn finance.Transaction) finance.TransactionWithAccount {
	annotated := finance.TransactionWithAccount{Transaction: txn}
	for _, account := range inMem.accounts {
		if account.ID == txn.AccountID {
			annotated.AccountName = account.Name
			annotated.AccountType = account.Type
			break
		}
	}
	return annotated
}
