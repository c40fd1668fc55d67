package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"parilka/internal/models"

	sqlite3 "github.com/mattn/go-sqlite3"
)

func (db *DB) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (
				id, email, password_hash, role, is_active, state, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsActive,
		account.State,
		now,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

func (db *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, email, password_hash, role, is_active, state, created_at, updated_at
	          FROM accounts WHERE email = ?`

	var account models.Account
	err := db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.IsActive, &account.State, &account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

func (db *DB) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, email, password_hash, role, is_active, state, created_at, updated_at
	          FROM accounts WHERE id = ?`

	var account models.Account
	err := db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.IsActive, &account.State, &account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// DeleteAccount удаляет аккаунт по id. Используется только компенсацией
// саги и recovery sweep.
func (db *DB) DeleteAccount(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAccountState переводит сагу регистрации в следующее состояние.
func (db *DB) SetAccountState(ctx context.Context, id, state string) error {
	query := `UPDATE accounts SET state = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, state, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set account state: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeactivateAccount(ctx context.Context, id string) error {
	query := `UPDATE accounts SET is_active = 0, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStuckAccounts возвращает аккаунты, застрявшие в provisioning дольше
// minAge. Это кандидаты на компенсацию после падения процесса.
func (db *DB) GetStuckAccounts(ctx context.Context, minAge time.Duration) ([]*models.Account, error) {
	cutoff := time.Now().UTC().Add(-minAge)
	query := `SELECT id, email, password_hash, role, is_active, state, created_at, updated_at
	          FROM accounts WHERE state = ? AND created_at < ? ORDER BY created_at ASC`

	rows, err := db.QueryContext(ctx, query, models.AccountStateProvisioning, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to get stuck accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a := &models.Account{}
		err := rows.Scan(
			&a.ID, &a.Email, &a.PasswordHash, &a.Role,
			&a.IsActive, &a.State, &a.CreatedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
