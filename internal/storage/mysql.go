package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	appErrors "finance-dashboard/errors"
	"finance-dashboard/internal/auth"
	"finance-dashboard/internal/contextutil"
	"finance-dashboard/internal/finance"
	"finance-dashboard/logging"

	"github.com/go-sql-driver/mysql"
)

// --- INIT START --- //

func Init() (*sql.DB, error) {
	var db *sql.DB
	var err error

	username := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	dbname := os.Getenv("DB_NAME")
	fullDsn := os.Getenv("FULL_DSN")

	if dbname == "" {
		dbname = "finance_dashboard"
	}

	var adminDsn string
	if fullDsn != "" {
		parts := strings.Split(fullDsn, "/")
		adminDsn = strings.Join(parts[:len(parts)-1], "/") + "/"
	} else {
		if username == "" || password == "" || host == "" || port == "" {
			return nil, fmt.Errorf("missing required DB environment variables")
		}
		adminDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/?parseTime=true", username, password, host, port)
	}

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %v", err)
	}
	connected := false
	for i := 0; i < 15; i++ {
		if err := adminDb.Ping(); err == nil {
			connected = true
			break
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/15)", i+1)
		time.Sleep(3 * time.Second)
	}
	if !connected {
		return nil, fmt.Errorf("database unreachable after multiple attempts")
	}

	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err = adminDb.QueryRow(checkDbnameExistQuery, dbname).Scan(&dbnameExistence)

	if err == sql.ErrNoRows {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.Exec(createDbSql); err != nil {
			adminDb.Close()
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	} else if err != nil {
		adminDb.Close()
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	adminDb.Close()

	var finalDsn string
	if fullDsn != "" {
		finalDsn = fullDsn
	} else {
		finalDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", username, password, host, port, dbname)
	}

	logging.Logger.Info("Connecting to database...")
	db, err = sql.Open("mysql", finalDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %v", err)
	}

	logging.Logger.Info("Connected to database successfully")
	logging.Logger.Info("Running migrations...")

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrationFiles, err := getMigrationFiles("db/migrations")
	if err != nil {
		return fmt.Errorf("failed to get migration files: %v", err)
	}

	lastAppliedMigration, err := getLastAppliedMigration(db)
	if err != nil {
		return fmt.Errorf("failed to get last applied migration name: %v", err)
	}

	newMigrations := filterNewMigrations(migrationFiles, lastAppliedMigration)

	if len(newMigrations) == 0 {
		logging.Logger.Info("no new migration")
		return nil
	}

	for _, migrationFile := range newMigrations {
		logging.Logger.Info("applying migration: ", migrationFile)
		migrationContent, err := os.ReadFile(filepath.Join("db/migrations/", migrationFile))
		if err != nil {
			return fmt.Errorf("failed to read this '%s' migration file, error: %v", migrationFile, err)
		}

		if err := applyMigration(db, migrationFile, string(migrationContent)); err != nil {
			return fmt.Errorf("failed to apply this '%s' migration file, error: %v", migrationFile, err)
		}
	}

	logging.Logger.Info("all migrations applied successfully")
	return nil
}

func getMigrationFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var migrationFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)
	return migrationFiles, nil
}

func getLastAppliedMigration(db *sql.DB) (string, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migration (
        id INT AUTO_INCREMENT PRIMARY KEY,
        migration_name VARCHAR(255) NOT NULL UNIQUE,
        applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`)

	if err != nil {
		return "", err
	}

	var lastMigration string
	err = db.QueryRow("SELECT migration_name FROM migration ORDER BY migration_name DESC LIMIT 1").Scan(&lastMigration)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return lastMigration, err
}

func filterNewMigrations(all []string, lastApplied string) []string {
	if lastApplied == "" {
		return all
	}

	var result []string
	for _, migration := range all {
		if migration > lastApplied {
			result = append(result, migration)
		}
	}
	return result
}

func applyMigration(db *sql.DB, name, sqlContent string) error {
	txn, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	statements := strings.Split(sqlContent, ";")

	for _, statement := range statements {
		trimmedStmt := strings.TrimSpace(statement)
		if trimmedStmt == "" {
			continue
		}

		if _, err := txn.Exec(trimmedStmt); err != nil {
			txn.Rollback()
			return fmt.Errorf("migration statement failed: %w\nStatement: %s", err, trimmedStmt)
		}
	}

	if _, err := txn.Exec("INSERT INTO migration (migration_name) VALUES (?)", name); err != nil {
		txn.Rollback()
		return fmt.Errorf("failed to record migration name: %w", err)
	}

	return txn.Commit()
}

// --- INIT END --- //

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// --- USERS & SESSIONS --- //

func (mySql *MySQLStorage) SaveUser(ctx context.Context, user auth.User) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO user (id, username, fullname, hashed_password, email, created_at) VALUES (?, ?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, user.ID, user.UserName, user.FullName, user.PasswordHashed, user.Email, user.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return appErrors.New(appErrors.ErrConflict, "The username is already taken.")
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save user in Storage.SaveUser() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Registration failed, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) ValidateUser(ctx context.Context, credentials auth.UserCredentialsPure) (auth.User, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var user auth.User
	query := "SELECT id, username, fullname, hashed_password, email, created_at FROM user WHERE username = ?;"
	err := mySql.db.QueryRowContext(ctx, query, strings.ToLower(credentials.UserName)).
		Scan(&user.ID, &user.UserName, &user.FullName, &user.PasswordHashed, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return auth.User{}, appErrors.New(appErrors.ErrAuth, "Username or password is wrong.")
	}
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to look up user in Storage.ValidateUser() | Error: %v", traceID, err)
		return auth.User{}, appErrors.New(appErrors.ErrInternal, "Login failed, try again later.")
	}

	if !auth.ComparePasswords(user.PasswordHashed, credentials.PasswordPlain) {
		return auth.User{}, appErrors.New(appErrors.ErrAuth, "Username or password is wrong.")
	}
	return user, nil
}

func (mySql *MySQLStorage) IsUserExists(ctx context.Context, username string) (bool, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM user WHERE username = ?);"
	if err := mySql.db.QueryRowContext(ctx, query, strings.ToLower(username)).Scan(&exists); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check user existence in Storage.IsUserExists() | Error: %v", traceID, err)
		return false, appErrors.New(appErrors.ErrInternal, "Failed to check username, try again later.")
	}
	return exists, nil
}

func (mySql *MySQLStorage) SaveSession(ctx context.Context, session auth.Session) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO session (id, token, created_at, expire_at, user_id) VALUES (?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, session.ID, session.Token, session.CreatedAt, session.ExpireAt, session.UserID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save session in Storage.SaveSession() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to create session, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var session auth.Session
	query := "SELECT id, token, created_at, expire_at, user_id FROM session WHERE token = ?;"
	err := mySql.db.QueryRowContext(ctx, query, token).
		Scan(&session.ID, &session.Token, &session.CreatedAt, &session.ExpireAt, &session.UserID)
	if err == sql.ErrNoRows {
		return auth.Session{}, appErrors.New(appErrors.ErrAuth, "Session not found, login again.")
	}
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get session in Storage.GetSessionByToken() | Error: %v", traceID, err)
		return auth.Session{}, appErrors.New(appErrors.ErrInternal, "Failed to check session, try again later.")
	}
	return session, nil
}

func (mySql *MySQLStorage) UpdateSession(ctx context.Context, userID string, expireAt time.Time) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "UPDATE session SET expire_at = ? WHERE user_id = ?;"
	if _, err := mySql.db.ExecContext(ctx, query, expireAt, userID); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update session in Storage.UpdateSession() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to extend session, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) DeleteSession(ctx context.Context, userID string, token string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "DELETE FROM session WHERE user_id = ? AND token = ?;"
	if _, err := mySql.db.ExecContext(ctx, query, userID, token); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete session in Storage.DeleteSession() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Logout failed, try again later.")
	}
	return nil
}

// --- ACCOUNTS --- //

func (mySql *MySQLStorage) SaveAccount(ctx context.Context, account finance.Account) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	txn, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to begin transaction in Storage.SaveAccount() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to save account, try again later.")
	}
	defer txn.Rollback()

	if account.IsDefault {
		clearQuery := "UPDATE account SET is_default = 0 WHERE user_id = ? AND is_default = 1;"
		if _, err := txn.ExecContext(ctx, clearQuery, account.UserID); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to clear defaults in Storage.SaveAccount() | Error: %v", traceID, err)
			return appErrors.New(appErrors.ErrInternal, "Failed to save account, try again later.")
		}
	}

	insertQuery := "INSERT INTO account (id, user_id, name, type, balance, is_default, created_at) VALUES (?, ?, ?, ?, ?, ?, ?);"
	_, err = txn.ExecContext(ctx, insertQuery, account.ID, account.UserID, account.Name, string(account.Type), account.Balance, account.IsDefault, account.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return appErrors.New(appErrors.ErrConflict, "The account already exists.")
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to insert account in Storage.SaveAccount() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to save account, try again later.")
	}

	if err := txn.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit in Storage.SaveAccount() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to save account, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) CountAccounts(ctx context.Context, userID string) (int, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var count int
	query := "SELECT COUNT(*) FROM account WHERE user_id = ?;"
	if err := mySql.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to count accounts in Storage.CountAccounts() | Error: %v", traceID, err)
		return 0, appErrors.New(appErrors.ErrInternal, "Failed to load accounts, try again later.")
	}
	return count, nil
}

func (mySql *MySQLStorage) GetAccounts(ctx context.Context, userID string) ([]finance.AccountWithCount, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := `SELECT a.id, a.user_id, a.name, a.type, a.balance, a.is_default, a.created_at, COUNT(t.id)
		FROM account a
		LEFT JOIN ` + "`transaction`" + ` t ON t.account_id = a.id
		WHERE a.user_id = ?
		GROUP BY a.id
		ORDER BY a.created_at DESC;`
	rows, err := mySql.db.QueryContext(ctx, query, userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get accounts in Storage.GetAccounts() | Error: %v", traceID, err)
		return nil, appErrors.New(appErrors.ErrInternal, "Failed to load accounts, try again later.")
	}
	defer rows.Close()

	var accounts []finance.AccountWithCount
	for rows.Next() {
		var account finance.AccountWithCount
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &account.Type, &account.Balance, &account.IsDefault, &account.CreatedAt, &account.TransactionCount); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan account in Storage.GetAccounts() | Error: %v", traceID, err)
			return nil, appErrors.New(appErrors.ErrInternal, "Failed to load accounts, try again later.")
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (mySql *MySQLStorage) GetAccountByID(ctx context.Context, userID string, accountID string) (finance.Account, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var account finance.Account
	query := "SELECT id, user_id, name, type, balance, is_default, created_at FROM account WHERE id = ? AND user_id = ?;"
	err := mySql.db.QueryRowContext(ctx, query, accountID, userID).
		Scan(&account.ID, &account.UserID, &account.Name, &account.Type, &account.Balance, &account.IsDefault, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return finance.Account{}, appErrors.New(appErrors.ErrNotFound, "Account not found.")
	}
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get account in Storage.GetAccountByID() | Error: %v", traceID, err)
		return finance.Account{}, appErrors.New(appErrors.ErrInternal, "Failed to load account, try again later.")
	}
	return account, nil
}

// SetDefaultAccount keeps the single-default invariant: the clear-all and
// set-one updates run in one database transaction.
func (mySql *MySQLStorage) SetDefaultAccount(ctx context.Context, userID string, accountID string) (finance.Account, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	txn, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to begin transaction in Storage.SetDefaultAccount() | Error: %v", traceID, err)
		return finance.Account{}, appErrors.New(appErrors.ErrInternal, "Failed to update default account, try again later.")
	}
	defer txn.Rollback()

	clearQuery := "UPDATE account SET is_default = 0 WHERE user_id = ?;"
	if _, err := txn.ExecContext(ctx, clearQuery, userID); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to clear defaults in Storage.SetDefaultAccount() | Error: %v", traceID, err)
		return finance.Account{}, appErrors.New(appErrors.ErrInternal, "Failed to update default account, try again later.")
	}

	setQuery := "UPDATE account SET is_default = 1 WHERE id = ? AND user_id = ?;"
	result, err := txn.ExecContext(ctx, setQuery, accountID, userID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to set default in Storage.SetDefaultAccount() | Error: %v", traceID, err)
		return finance.Account{}, appErrors.New(appErrors.ErrInternal, "Failed to update default account, try again later.")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read affected rows in Storage.SetDefaultAccount() | Error: %v", traceID, err)
		return finance.Account{}, appErrors.New(appErrors.ErrInternal, "Failed to update default account, try again later.")
	}
	if affected == 0 {
		return finance.Account{}, appErrors.New(appErrors.ErrNotFound, "Account not found.")
	}

	var account finance.Account
	selectQuery := "SELECT id, user_id, name, type, balance, is_default, created_at FROM account WHERE id = ? AND user_id = ?;"
	err = txn.QueryRowContext(ctx, selectQuery, accountID, userID).
		Scan(&account.ID, &account.UserID, &account.Name, &account.Type, &account.Balance, &account.IsDefault, &account.CreatedAt)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to reload account in Storage.SetDefaultAccount() | Error: %v", traceID, err)
		return finance.Account{}, appErrors.New(appErrors.ErrInternal, "Failed to update default account, try again later.")
	}

	if err := txn.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit in Storage.SetDefaultAccount() | Error: %v", traceID, err)
		return finance.Account{}, appErrors.New(appErrors.ErrInternal, "Failed to update default account, try again later.")
	}
	return account, nil
}

// --- TRANSACTIONS --- //

func (mySql *MySQLStorage) SaveTransaction(ctx context.Context, t finance.Transaction) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	txn, err := mySql.db.BeginTx(ctx, nil)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to begin transaction in Storage.SaveTransaction() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to save transaction, try again later.")
	}
	defer txn.Rollback()

	insertQuery := "INSERT INTO `transaction` (id, user_id, account_id, type, amount, category, description, date, is_recurring, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);"
	_, err = txn.ExecContext(ctx, insertQuery, t.ID, t.UserID, t.AccountID, string(t.Type), t.Amount, t.Category, t.Description, t.Date, t.IsRecurring, t.Status, t.CreatedAt)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to insert transaction in Storage.SaveTransaction() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to save transaction, try again later.")
	}

	// amount sign is implied by type
	delta := t.Amount
	if t.Type == finance.TransactionTypeExpense {
		delta = delta.Neg()
	}

	updateQuery := "UPDATE account SET balance = balance + ? WHERE id = ? AND user_id = ?;"
	result, err := txn.ExecContext(ctx, updateQuery, delta, t.AccountID, t.UserID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to adjust balance in Storage.SaveTransaction() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to save transaction, try again later.")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read affected rows in Storage.SaveTransaction() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to save transaction, try again later.")
	}
	if affected == 0 {
		return appErrors.New(appErrors.ErrNotFound, "Account not found.")
	}

	if err := txn.Commit(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to commit in Storage.SaveTransaction() | Error: %v", traceID, err)
		return appErrors.New(appErrors.ErrInternal, "Failed to save transaction, try again later.")
	}
	return nil
}

func (mySql *MySQLStorage) GetAccountTransactions(ctx context.Context, userID string, accountID string, limit int) ([]finance.Transaction, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT id, user_id, account_id, type, amount, category, description, date, is_recurring, status, created_at FROM `transaction` WHERE user_id = ? AND account_id = ? ORDER BY created_at DESC"
	args := []any{userID, accountID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	query += ";"

	rows, err := mySql.db.QueryContext(ctx, query, args...)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get transactions in Storage.GetAccountTransactions() | Error: %v", traceID, err)
		return nil, appErrors.New(appErrors.ErrInternal, "Failed to load transactions, try again later.")
	}
	defer rows.Close()

	var transactions []finance.Transaction
	for rows.Next() {
		var t finance.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.IsRecurring, &t.Status, &t.CreatedAt); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan transaction in Storage.GetAccountTransactions() | Error: %v", traceID, err)
			return nil, appErrors.New(appErrors.ErrInternal, "Failed to load transactions, try again later.")
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (mySql *MySQLStorage) CountAccountTransactions(ctx context.Context, userID string, accountID string) (int, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	var count int
	query := "SELECT COUNT(*) FROM `transaction` WHERE user_id = ? AND account_id = ?;"
	if err := mySql.db.QueryRowContext(ctx, query, userID, accountID).Scan(&count); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to count transactions in Storage.CountAccountTransactions() | Error: %v", traceID, err)
		return 0, appErrors.New(appErrors.ErrInternal, "Failed to load transactions, try again later.")
	}
	return count, nil
}

func (mySql *MySQLStorage) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]finance.TransactionWithAccount, error) {
	query := `SELECT t.id, t.user_id, t.account_id, t.type, t.amount, t.category, t.description, t.date, t.is_recurring, t.status, t.created_at, a.name, a.type
		FROM ` + "`transaction`" + ` t
		JOIN account a ON a.id = t.account_id
		WHERE t.user_id = ?
		ORDER BY t.created_at DESC
		LIMIT ?;`
	return mySql.queryTransactionsWithAccount(ctx, query, userID, limit)
}

func (mySql *MySQLStorage) GetTransactionsByCategory(ctx context.Context, userID string, category string, limit int) ([]finance.TransactionWithAccount, error) {
	query := `SELECT t.id, t.user_id, t.account_id, t.type, t.amount, t.category, t.description, t.date, t.is_recurring, t.status, t.created_at, a.name, a.type
		FROM ` + "`transaction`" + ` t
		JOIN account a ON a.id = t.account_id
		WHERE t.user_id = ? AND t.category = ?
		ORDER BY t.date DESC
		LIMIT ?;`
	return mySql.queryTransactionsWithAccount(ctx, query, userID, category, limit)
}

func (mySql *MySQLStorage) queryTransactionsWithAccount(ctx context.Context, query string, args ...any) ([]finance.TransactionWithAccount, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	rows, err := mySql.db.QueryContext(ctx, query, args...)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get transactions in Storage.queryTransactionsWithAccount() | Error: %v", traceID, err)
		return nil, appErrors.New(appErrors.ErrInternal, "Failed to load transactions, try again later.")
	}
	defer rows.Close()

	var transactions []finance.TransactionWithAccount
	for rows.Next() {
		var t finance.TransactionWithAccount
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Type, &t.Amount, &t.Category, &t.Description, &t.Date, &t.IsRecurring, &t.Status, &t.CreatedAt, &t.AccountName, &t.AccountType); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan transaction in Storage.queryTransactionsWithAccount() | Error: %v", traceID, err)
			return nil, appErrors.New(appErrors.ErrInternal, "Failed to load transactions, try again later.")
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (mySql *MySQLStorage) GetCategorySpending(ctx context.Context, userID string, txType finance.TransactionType, since time.Time) ([]finance.CategorySpend, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT category, SUM(amount) FROM `transaction` WHERE user_id = ? AND type = ? AND date >= ? GROUP BY category ORDER BY SUM(amount) DESC;"
	rows, err := mySql.db.QueryContext(ctx, query, userID, string(txType), since)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get category spending in Storage.GetCategorySpending() | Error: %v", traceID, err)
		return nil, appErrors.New(appErrors.ErrInternal, "Failed to load category spending, try again later.")
	}
	defer rows.Close()

	var spending []finance.CategorySpend
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan category spending in Storage.GetCategorySpending() | Error: %v", traceID, err)
			return nil, appErrors.New(appErrors.ErrInternal, "Failed to load category spending, try again later.")
		}
		spending = append(spending, finance.CategorySpend{Category: category, Amount: total})
	}
	return spending, rows.Err()
}
