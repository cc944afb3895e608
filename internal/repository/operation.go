package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/opmeter/opmeter/internal/model"
)

// ErrOperationNotFound indicates the requested operation does not exist.
var ErrOperationNotFound = errors.New("operation not found")

// CreateOperation inserts a new catalog operation and returns the
// stored row. Operations are immutable once created.
func (r *Repository) CreateOperation(ctx context.Context, opType model.OperationType, cost decimal.Decimal) (*model.Operation, error) {
	query := `
		INSERT INTO operations (type, cost)
		VALUES ($1, $2)
		RETURNING id, type, cost
	`

	var op model.Operation
	err := r.pool.QueryRow(ctx, query, opType, cost).Scan(
		&op.ID,
		&op.Type,
		&op.Cost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operation: %w", err)
	}

	return &op, nil
}

// GetOperationByID retrieves an operation by its ID.
func (r *Repository) GetOperationByID(ctx context.Context, id int64) (*model.Operation, error) {
	query := `
		SELECT id, type, cost
		FROM operations
		WHERE id = $1
	`

	var op model.Operation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&op.ID,
		&op.Type,
		&op.Cost,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOperationNotFound
		}
		return nil, fmt.Errorf("failed to get operation by ID: %w", err)
	}

	return &op, nil
}

// ListOperations returns a page of the catalog ordered by ID.
func (r *Repository) ListOperations(ctx context.Context, skip, limit int) ([]*model.Operation, error) {
	query := `
		SELECT id, type, cost
		FROM operations
		ORDER BY id
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	operations := make([]*model.Operation, 0, limit)
	for rows.Next() {
		var op model.Operation
		if err := rows.Scan(&op.ID, &op.Type, &op.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		operations = append(operations, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read operations: %w", err)
	}

	return operations, nil
}
