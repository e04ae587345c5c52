// Package storage is the SQLite-backed read side for the persona pipeline.
// The core packages never touch SQL; they consume the typed records this
// repository returns.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finpersona/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = time.RFC3339

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetAccounts returns every account owned by userID.
func (r *SQLiteRepository) GetAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, subtype,
		       balance_available, balance_current, balance_limit
		FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var accountType string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &accountType, &a.Subtype,
			&a.Balances.Available, &a.Balances.Current, &a.Balances.Limit); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(accountType)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetTransactions returns transactions on the given accounts within
// [from, to], ordered by date ascending.
func (r *SQLiteRepository) GetTransactions(ctx context.Context, accountIDs []string, from, to time.Time) ([]core.Transaction, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(accountIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(accountIDs)+2)
	for _, id := range accountIDs {
		args = append(args, id)
	}
	args = append(args, from.Format(dateLayout), to.Format(dateLayout))

	query := fmt.Sprintf(`
		SELECT id, account_id, date, amount, merchant, category, category_detail, payment_channel
		FROM transactions
		WHERE account_id IN (%s) AND date >= ? AND date <= ?
		ORDER BY date`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date string
		if err := rows.Scan(&t.ID, &t.AccountID, &date, &t.Amount,
			&t.Merchant, &t.Category, &t.CategoryDetail, &t.PaymentChannel); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// GetLiability returns the liability record for accountID, or nil when the
// account carries none.
func (r *SQLiteRepository) GetLiability(ctx context.Context, accountID string) (*core.Liability, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT account_id, apr, minimum_payment, last_payment_amount,
		       last_statement_balance, is_overdue, next_due_date
		FROM liabilities WHERE account_id = ?`, accountID)

	var l core.Liability
	var overdue int
	var dueDate sql.NullString
	err := row.Scan(&l.AccountID, &l.APR, &l.MinimumPayment, &l.LastPaymentAmount,
		&l.LastStatementBalance, &overdue, &dueDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query liability: %w", err)
	}

	l.IsOverdue = overdue != 0
	if dueDate.Valid && dueDate.String != "" {
		if l.NextDueDate, err = time.Parse(dateLayout, dueDate.String); err != nil {
			return nil, fmt.Errorf("parse due date %q: %w", dueDate.String, err)
		}
	}
	return &l, nil
}

// GetAllUserIDs returns every known user id, for cross-user percentile
// computations.
func (r *SQLiteRepository) GetAllUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateUser inserts a user row, used by seeding and tests.
func (r *SQLiteRepository) CreateUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id) VALUES (?)`, userID); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// CreateAccount inserts an account after validation.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validate account: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, subtype,
		                      balance_available, balance_current, balance_limit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, string(a.Type), a.Subtype,
		a.Balances.Available, a.Balances.Current, a.Balances.Limit)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// CreateTransaction inserts a transaction after validation.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, date, amount, merchant,
		                          category, category_detail, payment_channel)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Date.Format(dateLayout), t.Amount, t.Merchant,
		t.Category, t.CategoryDetail, t.PaymentChannel)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// UpsertLiability writes the liability record for an account.
func (r *SQLiteRepository) UpsertLiability(ctx context.Context, l core.Liability) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("validate liability: %w", err)
	}
	var dueDate any
	if !l.NextDueDate.IsZero() {
		dueDate = l.NextDueDate.Format(dateLayout)
	}
	overdue := 0
	if l.IsOverdue {
		overdue = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO liabilities (account_id, apr, minimum_payment, last_payment_amount,
		                         last_statement_balance, is_overdue, next_due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
			apr = excluded.apr,
			minimum_payment = excluded.minimum_payment,
			last_payment_amount = excluded.last_payment_amount,
			last_statement_balance = excluded.last_statement_balance,
			is_overdue = excluded.is_overdue,
			next_due_date = excluded.next_due_date`,
		l.AccountID, l.APR, l.MinimumPayment, l.LastPaymentAmount,
		l.LastStatementBalance, overdue, dueDate)
	if err != nil {
		return fmt.Errorf("upsert liability: %w", err)
	}
	return nil
}
