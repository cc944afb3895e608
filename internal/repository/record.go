package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/opmeter/opmeter/internal/model"
)

// Common errors for ledger operations.
var (
	// ErrRecordNotFound indicates no ledger record matches the given ID
	// (or the record belongs to another user, on owner-scoped paths).
	ErrRecordNotFound = errors.New("record not found")
	// ErrInsufficientBalance indicates the user cannot afford the operation.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInconsistent indicates the debit/record unit could not be kept
	// atomic. It must never surface as a client error; callers log and
	// alert on it distinctly.
	ErrInconsistent = errors.New("ledger inconsistency")
)

const recordColumns = `id, operation_id, user_id, amount, user_balance, operation_response, created_at, deleted`

// DebitAndRecord settles one transaction: it locks the user's row,
// re-checks the balance under the lock, debits the cost and inserts the
// ledger record, all inside a single database transaction. Either both
// writes commit or neither does.
//
// The returned record is the stored row, with the store-assigned ID and
// timestamp populated. Calling this twice for the same request debits
// twice; the ledger is deliberately non-idempotent.
func (r *Repository) DebitAndRecord(ctx context.Context, userID int64, op *model.Operation, response string) (*model.Record, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Row lock serialises concurrent transactions for the same user, so
	// two requests cannot both pass the balance check before either
	// debits.
	var balance decimal.Decimal
	err = tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user balance: %w", err)
	}

	if balance.LessThan(op.Cost) {
		return nil, ErrInsufficientBalance
	}
	newBalance := balance.Sub(op.Cost)

	if _, err := tx.Exec(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, newBalance, userID); err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	var rec model.Record
	err = tx.QueryRow(ctx, `
		INSERT INTO records (operation_id, user_id, amount, user_balance, operation_response)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+recordColumns,
		op.ID, userID, op.Cost, newBalance, response,
	).Scan(
		&rec.ID,
		&rec.OperationID,
		&rec.UserID,
		&rec.Amount,
		&rec.UserBalance,
		&rec.OperationResponse,
		&rec.CreatedAt,
		&rec.Deleted,
	)
	if err != nil {
		// The deferred rollback undoes the debit; if it cannot, the
		// balance moved without a matching ledger row.
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return nil, fmt.Errorf("%w: debit applied but record insert failed (%v) and rollback failed (%v)", ErrInconsistent, err, rbErr)
		}
		return nil, fmt.Errorf("failed to insert record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &rec, nil
}

// GetRecordByID retrieves a record by its raw ID, tombstoned or not.
func (r *Repository) GetRecordByID(ctx context.Context, id int64) (*model.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	var rec model.Record
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.OperationID,
		&rec.UserID,
		&rec.Amount,
		&rec.UserBalance,
		&rec.OperationResponse,
		&rec.CreatedAt,
		&rec.Deleted,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record by ID: %w", err)
	}

	return &rec, nil
}

// ListRecords returns a page of the user's live (non-tombstoned)
// records. When search is non-empty, a row is included only if the text
// appears case-insensitively in the operation response or in the string
// form of any numeric or timestamp field.
func (r *Repository) ListRecords(ctx context.Context, userID int64, skip, limit int, search string) ([]*model.Record, error) {
	// strpos instead of LIKE so that % and _ in the search text match
	// literally.
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE deleted = FALSE
		  AND user_id = $1
		  AND ($2 = ''
		       OR strpos(lower(operation_response), lower($2)) > 0
		       OR strpos(operation_id::text, $2) > 0
		       OR strpos(user_id::text, $2) > 0
		       OR strpos(amount::text, $2) > 0
		       OR strpos(user_balance::text, $2) > 0
		       OR strpos(lower(created_at::text), lower($2)) > 0)
		ORDER BY id
		OFFSET $3 LIMIT $4
	`

	rows, err := r.pool.Query(ctx, query, userID, search, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := make([]*model.Record, 0, limit)
	for rows.Next() {
		var rec model.Record
		err := rows.Scan(
			&rec.ID,
			&rec.OperationID,
			&rec.UserID,
			&rec.Amount,
			&rec.UserBalance,
			&rec.OperationResponse,
			&rec.CreatedAt,
			&rec.Deleted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// SoftDeleteRecord flips the tombstone flag on the user's record and
// returns the updated row. Deleting an already-tombstoned record
// succeeds and yields the same state.
func (r *Repository) SoftDeleteRecord(ctx context.Context, id, userID int64) (*model.Record, error) {
	query := `
		UPDATE records
		SET deleted = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING ` + recordColumns

	var rec model.Record
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&rec.ID,
		&rec.OperationID,
		&rec.UserID,
		&rec.Amount,
		&rec.UserBalance,
		&rec.OperationResponse,
		&rec.CreatedAt,
		&rec.Deleted,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to soft delete record: %w", err)
	}

	return &rec, nil
}
