package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"imagerecog/models"

	"github.com/mattn/go-sqlite3"
)

// SQLiteUserRepository implements the UserRepository interface for SQLite
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLiteUserRepository
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteUserRepository) Close() error {
	return r.db.Close()
}

// Exists reports whether a user with the given username is registered
func (r *SQLiteUserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error counting users: %w", err)
	}
	return count != 0, nil
}

// Create inserts a new user, relying on the unique index on username to
// reject duplicates atomically
func (r *SQLiteUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.ID == "" {
		user.ID = GenerateID()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, tokens, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, user.Tokens, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrDuplicateUser
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// FindByUsername finds a user by username
func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, tokens, created_at, updated_at
		 FROM users WHERE username = ?`, username).
		Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Tokens, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	return &user, nil
}

// UpdateTokens overwrites the token balance for a user
func (r *SQLiteUserRepository) UpdateTokens(ctx context.Context, username string, tokens int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET tokens = ?, updated_at = ? WHERE username = ?`,
		tokens, time.Now(), username)
	if err != nil {
		return fmt.Errorf("error updating tokens: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating tokens: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DebitToken decrements the token balance by one as a single conditional
// update. When the balance is already zero the update matches no row and the
// caller learns about the shortage after the fact, which is what keeps two
// concurrent debits from both succeeding on a stale read.
func (r *SQLiteUserRepository) DebitToken(ctx context.Context, username string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting debit transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET tokens = tokens - 1, updated_at = ?
		 WHERE username = ? AND tokens > 0`,
		time.Now(), username)
	if err != nil {
		return 0, fmt.Errorf("error debiting token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error debiting token: %w", err)
	}
	if affected == 0 {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&count); err != nil {
			return 0, fmt.Errorf("error checking user after failed debit: %w", err)
		}
		if count == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrInsufficientTokens
	}

	var balance int
	if err := tx.QueryRowContext(ctx,
		`SELECT tokens FROM users WHERE username = ?`, username).Scan(&balance); err != nil {
		return 0, fmt.Errorf("error reading balance after debit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing debit: %w", err)
	}

	return balance, nil
}
