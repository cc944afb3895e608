package service

import (
	"context"
	"errors"

	"github.com/opmeter/opmeter/internal/model"
	"github.com/opmeter/opmeter/internal/repository"
)

// ErrRecordNotFound indicates no record with that ID exists for the
// caller. Foreign records report the same, so listing and deletion
// never leak other users' ledger entries.
var ErrRecordNotFound = errors.New("record not found")

// RecordStore is the ledger-query contract the record service needs.
type RecordStore interface {
	GetRecordByID(ctx context.Context, id int64) (*model.Record, error)
	ListRecords(ctx context.Context, userID int64, skip, limit int, search string) ([]*model.Record, error)
	SoftDeleteRecord(ctx context.Context, id, userID int64) (*model.Record, error)
}

// RecordService provides listing, search and soft deletion over the
// caller's own ledger records.
type RecordService struct {
	store RecordStore
	pages Pagination
}

// NewRecordService creates a new RecordService.
func NewRecordService(store RecordStore, pages Pagination) *RecordService {
	return &RecordService{store: store, pages: pages}
}

// List returns a page of the user's live records, optionally filtered
// by the multi-field substring search.
func (s *RecordService) List(ctx context.Context, userID int64, skip, limit int, search string) ([]*model.Record, error) {
	skip, limit = s.pages.Normalize(skip, limit)
	return s.store.ListRecords(ctx, userID, skip, limit, search)
}

// SoftDelete tombstones the user's record and returns the updated row.
// Deleting twice yields the same tombstoned state and still succeeds.
func (s *RecordService) SoftDelete(ctx context.Context, userID, recordID int64) (*model.Record, error) {
	rec, err := s.store.SoftDeleteRecord(ctx, recordID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

// Get is a point lookup by raw ID; it finds tombstoned records too.
func (s *RecordService) Get(ctx context.Context, userID, recordID int64) (*model.Record, error) {
	rec, err := s.store.GetRecordByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	if rec.UserID != userID {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}
