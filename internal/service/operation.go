package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/opmeter/opmeter/internal/metrics"
	"github.com/opmeter/opmeter/internal/model"
	"github.com/opmeter/opmeter/internal/repository"
)

// Operation service errors.
var (
	ErrInvalidOperationType = errors.New("invalid operation type")
	ErrNegativeCost         = errors.New("operation cost must be non-negative")
	ErrOperationNotFound    = errors.New("operation not found")
)

// OperationStore is the catalog contract the operation service needs.
type OperationStore interface {
	CreateOperation(ctx context.Context, opType model.OperationType, cost decimal.Decimal) (*model.Operation, error)
	GetOperationByID(ctx context.Context, id int64) (*model.Operation, error)
	ListOperations(ctx context.Context, skip, limit int) ([]*model.Operation, error)
}

// OperationCache holds immutable catalog entries.
type OperationCache interface {
	GetOperation(ctx context.Context, id int64) (*model.Operation, error)
	SetOperation(ctx context.Context, op *model.Operation) error
}

// OperationService manages the operation catalog.
type OperationService struct {
	store   OperationStore
	cache   OperationCache
	pages   Pagination
	metrics metrics.Recorder
	logger  *slog.Logger
}

// Pagination holds the default and maximum page sizes for listings.
type Pagination struct {
	Default int
	Max     int
}

// Normalize clamps skip/limit into a sane, bounded range.
func (p Pagination) Normalize(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = p.Default
	}
	if limit > p.Max {
		limit = p.Max
	}
	return skip, limit
}

// NewOperationService creates a new OperationService.
func NewOperationService(store OperationStore, cache OperationCache, pages Pagination, recorder metrics.Recorder, logger *slog.Logger) *OperationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &OperationService{
		store:   store,
		cache:   cache,
		pages:   pages,
		metrics: recorder,
		logger:  logger,
	}
}

// Create adds a priced operation to the catalog. The type must be one
// of the six known values and the cost non-negative.
func (s *OperationService) Create(ctx context.Context, opType model.OperationType, cost decimal.Decimal) (*model.Operation, error) {
	if !opType.IsValid() {
		return nil, ErrInvalidOperationType
	}
	if cost.IsNegative() {
		return nil, ErrNegativeCost
	}

	return s.store.CreateOperation(ctx, opType, cost)
}

// Get resolves an operation by ID, consulting the cache first.
// Operations are immutable, so cached entries never go stale.
func (s *OperationService) Get(ctx context.Context, id int64) (*model.Operation, error) {
	if cached, _ := s.cache.GetOperation(ctx, id); cached != nil {
		s.metrics.IncOperationCacheHit()
		return cached, nil
	}
	s.metrics.IncOperationCacheMiss()

	op, err := s.store.GetOperationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOperationNotFound) {
			return nil, ErrOperationNotFound
		}
		return nil, err
	}

	// Cache write is best effort.
	if err := s.cache.SetOperation(ctx, op); err != nil {
		s.logger.Warn("operation cache write failed", "operation_id", op.ID, "error", err)
	}

	return op, nil
}

// List returns a page of the catalog.
func (s *OperationService) List(ctx context.Context, skip, limit int) ([]*model.Operation, error) {
	skip, limit = s.pages.Normalize(skip, limit)
	return s.store.ListOperations(ctx, skip, limit)
}
