/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL needed for users, accounts,
 * beneficiaries and the transaction ledger.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: The domain models used for data transfer.
 */
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/abbasmsh1/Banker/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// uniqueViolationConstraint returns the violated constraint name when err is
// a PostgreSQL unique-constraint violation, or "" otherwise.
func uniqueViolationConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

// CreateUser inserts a new user record and fills in the generated ID.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
        INSERT INTO users (username, password_hash, is_admin)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, user.Username, user.PasswordHash, user.IsAdmin).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if uniqueViolationConstraint(err) != "" {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user from the database by their username.
func (r *PostgresRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, username, password_hash, is_admin, created_at FROM users WHERE username = $1`
	err := r.db.QueryRow(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, username, password_hash, is_admin, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateAccount inserts a new account row. A unique violation on user_id
// means the user already owns an account; one on iban/address means the
// generated identifier collided and the caller should regenerate and retry.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
        INSERT INTO accounts (user_id, holder_name, father_name, phone_number, iban, address, balance)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		account.UserID,
		account.HolderName,
		account.FatherName,
		account.PhoneNumber,
		account.IBAN,
		account.Address,
		account.Balance,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if constraint := uniqueViolationConstraint(err); constraint != "" {
			if strings.Contains(constraint, "user_id") {
				return ErrAccountExists
			}
			return ErrIdentifierConflict
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

const accountColumns = `id, user_id, holder_name, father_name, phone_number, iban, address, balance, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.HolderName,
		&account.FatherName,
		&account.PhoneNumber,
		&account.IBAN,
		&account.Address,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAccountByUserID retrieves the account owned by the given user.
func (r *PostgresRepository) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, userID))
}

// FindAccountByIBAN retrieves an account by its IBAN.
func (r *PostgresRepository) FindAccountByIBAN(ctx context.Context, iban string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE iban = $1`
	return scanAccount(r.db.QueryRow(ctx, query, iban))
}

// FindAccountByAddress retrieves an account by its crypto address.
func (r *PostgresRepository) FindAccountByAddress(ctx context.Context, address string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE address = $1`
	return scanAccount(r.db.QueryRow(ctx, query, address))
}

// FindAccountByID retrieves an account by its primary key.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

// ListAccounts returns every account, oldest first.
func (r *PostgresRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// CreditAccount adds amount to the balance of the account with the given
// IBAN and returns the new balance. The row is locked for the duration of
// the update so concurrent credits and transfers serialize.
func (r *PostgresRepository) CreditAccount(ctx context.Context, iban string, amount decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	query := `
        UPDATE accounts
        SET balance = balance + $1, updated_at = NOW()
        WHERE iban = $2
        RETURNING balance
    `
	err := r.db.QueryRow(ctx, query, amount, iban).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to credit account: %w", err)
	}
	return newBalance, nil
}

// ExecuteTransfer moves amount from the sender account to the recipient
// account and appends the paired ledger rows, all in one database
// transaction. Both account rows are locked with FOR UPDATE, always in
// ascending id order so two opposing transfers cannot deadlock. The balance
// check happens after the lock is held, which closes the read-check-write
// race a naive implementation would have. Returns the sender-side row.
func (r *PostgresRepository) ExecuteTransfer(ctx context.Context, senderAccountID, recipientAccountID uuid.UUID, amount decimal.Decimal, at time.Time) (*domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	type lockedAccount struct {
		balance decimal.Decimal
		iban    string
		address string
	}

	lock := func(id uuid.UUID) (lockedAccount, error) {
		var acct lockedAccount
		err := tx.QueryRow(ctx,
			`SELECT balance, iban, address FROM accounts WHERE id = $1 FOR UPDATE`, id).
			Scan(&acct.balance, &acct.iban, &acct.address)
		if errors.Is(err, pgx.ErrNoRows) {
			return acct, ErrAccountNotFound
		}
		return acct, err
	}

	first, second := senderAccountID, recipientAccountID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}
	locked := map[uuid.UUID]lockedAccount{}
	for _, id := range []uuid.UUID{first, second} {
		acct, err := lock(id)
		if err != nil {
			return nil, err
		}
		locked[id] = acct
	}

	sender := locked[senderAccountID]
	recipient := locked[recipientAccountID]

	if sender.balance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance - $1, updated_at = NOW() WHERE id = $2`,
		amount, senderAccountID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`,
		amount, recipientAccountID); err != nil {
		return nil, err
	}

	insert := `
        INSERT INTO transactions (account_id, direction, amount, counterparty_iban, counterparty_address, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	sendRow := domain.Transaction{
		AccountID:           senderAccountID,
		Direction:           domain.DirectionSend,
		Amount:              amount,
		CounterpartyIBAN:    &recipient.iban,
		CounterpartyAddress: &recipient.address,
		CreatedAt:           at,
	}
	if err := tx.QueryRow(ctx, insert,
		sendRow.AccountID, sendRow.Direction, sendRow.Amount,
		sendRow.CounterpartyIBAN, sendRow.CounterpartyAddress, sendRow.CreatedAt).
		Scan(&sendRow.ID); err != nil {
		return nil, err
	}

	receiveInsert := `
        INSERT INTO transactions (account_id, direction, amount, counterparty_iban, counterparty_address, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `
	if _, err := tx.Exec(ctx, receiveInsert,
		recipientAccountID, domain.DirectionReceive, amount,
		&sender.iban, &sender.address, at); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &sendRow, nil
}

// CreateBeneficiary inserts a new address-book entry and fills in its ID.
func (r *PostgresRepository) CreateBeneficiary(ctx context.Context, beneficiary *domain.Beneficiary) error {
	query := `
        INSERT INTO beneficiaries (user_id, name, iban, address)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		beneficiary.UserID,
		beneficiary.Name,
		beneficiary.IBAN,
		beneficiary.Address,
	).Scan(&beneficiary.ID, &beneficiary.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create beneficiary: %w", err)
	}
	return nil
}

// ListBeneficiariesByUserID returns a user's beneficiaries in insertion order.
func (r *PostgresRepository) ListBeneficiariesByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Beneficiary, error) {
	query := `
        SELECT id, user_id, name, iban, address, created_at
        FROM beneficiaries
        WHERE user_id = $1
        ORDER BY created_at
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query beneficiaries: %w", err)
	}
	defer rows.Close()

	beneficiaries := []domain.Beneficiary{}
	for rows.Next() {
		var b domain.Beneficiary
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.IBAN, &b.Address, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary row: %w", err)
		}
		beneficiaries = append(beneficiaries, b)
	}
	return beneficiaries, rows.Err()
}

// ListTransactionsByAccountID returns an account's ledger rows newest first,
// optionally restricted to rows at or after since.
func (r *PostgresRepository) ListTransactionsByAccountID(ctx context.Context, accountID uuid.UUID, since *time.Time) ([]domain.Transaction, error) {
	query := `
        SELECT id, account_id, direction, amount, counterparty_iban, counterparty_address, created_at
        FROM transactions
        WHERE account_id = $1
    `
	args := []interface{}{accountID}
	if since != nil {
		query += ` AND created_at >= $2`
		args = append(args, *since)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Direction, &t.Amount,
			&t.CounterpartyIBAN, &t.CounterpartyAddress, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// TotalBalance returns the sum of every account balance.
func (r *PostgresRepository) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balances: %w", err)
	}
	return total, nil
}

// TotalSentSince sums the amounts of send-direction rows created at or
// after the given instant.
func (r *PostgresRepository) TotalSentSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM transactions
        WHERE direction = 'send' AND created_at >= $1
    `
	if err := r.db.QueryRow(ctx, query, since).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sent amounts: %w", err)
	}
	return total, nil
}

// InsertDailySummary records the nightly aggregate snapshot. Re-running the
// job for the same date overwrites the previous snapshot.
func (r *PostgresRepository) InsertDailySummary(ctx context.Context, summary *domain.DailySummary) error {
	query := `
        INSERT INTO daily_summaries (summary_date, total_balance, total_transferred)
        VALUES ($1, $2, $3)
        ON CONFLICT (summary_date) DO UPDATE
        SET total_balance = EXCLUDED.total_balance,
            total_transferred = EXCLUDED.total_transferred
    `
	_, err := r.db.Exec(ctx, query, summary.SummaryDate, summary.TotalBalance, summary.TotalTransferred)
	if err != nil {
		return fmt.Errorf("failed to insert daily summary: %w", err)
	}
	return nil
}
