package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/opmeter/opmeter/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already registered")
)

// CreateUser inserts a new user and returns the stored row.
// The caller supplies the starting balance; status always begins active.
func (r *Repository) CreateUser(ctx context.Context, username, hashedPassword string, balance decimal.Decimal) (*model.User, error) {
	query := `
		INSERT INTO users (username, hashed_password, balance, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, hashed_password, balance, status
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, username, hashedPassword, balance, model.StatusActive).Scan(
		&user.ID,
		&user.Username,
		&user.HashedPassword,
		&user.Balance,
		&user.Status,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, hashed_password, balance, status
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.HashedPassword,
		&user.Balance,
		&user.Status,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by their unique username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, hashed_password, balance, status
		FROM users
		WHERE username = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.HashedPassword,
		&user.Balance,
		&user.Status,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}
