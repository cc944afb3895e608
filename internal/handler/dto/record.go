package dto

import (
	"time"

	"github.com/opmeter/opmeter/internal/model"
)

// CalculateRequest represents the request body for running an operation.
type CalculateRequest struct {
	OperationID int64 `json:"operation_id"`
}

// RecordResponse represents a ledger record in API responses.
type RecordResponse struct {
	ID                int64     `json:"id"`
	OperationID       int64     `json:"operation_id"`
	UserID            int64     `json:"user_id"`
	Amount            float64   `json:"amount"`
	UserBalance       float64   `json:"user_balance"`
	OperationResponse string    `json:"operation_response"`
	CreatedAt         time.Time `json:"created_at"`
	Deleted           bool      `json:"deleted"`
}

// RecordListResponse represents a page of ledger records.
type RecordListResponse struct {
	Data []RecordResponse `json:"data"`
}

// ToRecordResponse converts a Record model to RecordResponse DTO.
func ToRecordResponse(rec *model.Record) *RecordResponse {
	return &RecordResponse{
		ID:                rec.ID,
		OperationID:       rec.OperationID,
		UserID:            rec.UserID,
		Amount:            rec.Amount.InexactFloat64(),
		UserBalance:       rec.UserBalance.InexactFloat64(),
		OperationResponse: rec.OperationResponse,
		CreatedAt:         rec.CreatedAt,
		Deleted:           rec.Deleted,
	}
}

// ToRecordListResponse converts a slice of Record models.
func ToRecordListResponse(records []*model.Record) *RecordListResponse {
	responses := make([]RecordResponse, len(records))
	for i, rec := range records {
		responses[i] = *ToRecordResponse(rec)
	}
	return &RecordListResponse{Data: responses}
}
