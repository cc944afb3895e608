package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/opmeter/opmeter/internal/executor"
	"github.com/opmeter/opmeter/internal/metrics"
	"github.com/opmeter/opmeter/internal/model"
	"github.com/opmeter/opmeter/internal/repository"
)

// Transaction service errors.
var (
	// ErrInsufficientBalance fails the admission check; nothing is
	// executed or mutated.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUnsupportedOperationType is a client error, not a server fault.
	ErrUnsupportedOperationType = errors.New("unsupported operation type")
	// ErrExecutionFailed covers operation faults such as the outbound
	// randomness call failing. No debit occurs.
	ErrExecutionFailed = errors.New("operation execution failed")
)

// Ledger is the ledger-store contract the transaction service needs.
// DebitAndRecord must keep the balance update and the record insert in
// one all-or-nothing unit.
type Ledger interface {
	DebitAndRecord(ctx context.Context, userID int64, op *model.Operation, response string) (*model.Record, error)
}

// Catalog resolves operations by ID.
type Catalog interface {
	Get(ctx context.Context, id int64) (*model.Operation, error)
}

// OperationExecutor runs an operation's computation.
type OperationExecutor interface {
	Execute(ctx context.Context, typ model.OperationType) (string, error)
}

// TransactionService orchestrates one metered invocation: resolve the
// operation, admit against the balance, execute, then settle and record
// atomically. It is the sole writer of ledger records and the sole
// mutator of user balances.
type TransactionService struct {
	ledger   Ledger
	catalog  Catalog
	executor OperationExecutor
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(ledger Ledger, catalog Catalog, exec OperationExecutor, recorder metrics.Recorder, logger *slog.Logger) *TransactionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TransactionService{
		ledger:   ledger,
		catalog:  catalog,
		executor: exec,
		metrics:  recorder,
		logger:   logger,
	}
}

// Calculate runs the transaction protocol for an authenticated user and
// a requested operation, returning the persisted ledger record.
//
// Replaying the same call debits again and creates a second record;
// callers must not blindly retry.
func (s *TransactionService) Calculate(ctx context.Context, user *model.User, operationID int64) (*model.Record, error) {
	start := time.Now()

	// Resolve
	op, err := s.catalog.Get(ctx, operationID)
	if err != nil {
		return nil, err
	}

	// Admit. This is a fast-fail check on the balance the caller was
	// resolved with; the settle step re-checks under a row lock.
	if user.Balance.LessThan(op.Cost) {
		s.metrics.IncTransactionInsufficientBalance()
		return nil, ErrInsufficientBalance
	}

	// Execute before any mutation: a failed operation must not debit.
	response, err := s.executor.Execute(ctx, op.Type)
	if err != nil {
		s.metrics.IncTransactionExecutionFailed()
		switch {
		case errors.Is(err, executor.ErrUnsupportedOperation):
			return nil, ErrUnsupportedOperationType
		case errors.Is(err, executor.ErrExecutionFailed):
			return nil, fmt.Errorf("%w: %v", ErrExecutionFailed, err)
		default:
			return nil, err
		}
	}

	// Settle and record in one atomic unit.
	rec, err := s.ledger.DebitAndRecord(ctx, user.ID, op, response)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			// A concurrent transaction won the race for the remaining
			// balance between our admission check and the row lock.
			s.metrics.IncTransactionInsufficientBalance()
			return nil, ErrInsufficientBalance
		}
		if errors.Is(err, repository.ErrInconsistent) {
			// The debit/record unit broke. This is an infrastructure
			// fault, never a client error.
			s.logger.Error("ledger inconsistency detected",
				"user_id", user.ID,
				"operation_id", op.ID,
				"error", err,
			)
			return nil, err
		}
		return nil, err
	}

	s.metrics.IncTransactionSettled()
	s.metrics.ObserveTransactionDuration(time.Since(start))

	return rec, nil
}
