package dto

import (
	"github.com/shopspring/decimal"

	"github.com/opmeter/opmeter/internal/model"
)

// CreateOperationRequest represents the request body for creating an
// operation. Cost accepts either a JSON number or a numeric string;
// decoding into a decimal keeps the stored cost exact.
type CreateOperationRequest struct {
	Type string          `json:"type"`
	Cost decimal.Decimal `json:"cost"`
}

// OperationResponse represents an operation in API responses.
type OperationResponse struct {
	ID   int64   `json:"id"`
	Type string  `json:"type"`
	Cost float64 `json:"cost"`
}

// OperationListResponse represents a page of operations.
type OperationListResponse struct {
	Data []OperationResponse `json:"data"`
}

// ToOperationResponse converts an Operation model to OperationResponse DTO.
func ToOperationResponse(op *model.Operation) *OperationResponse {
	return &OperationResponse{
		ID:   op.ID,
		Type: string(op.Type),
		Cost: op.Cost.InexactFloat64(),
	}
}

// ToOperationListResponse converts a slice of Operation models.
func ToOperationListResponse(ops []*model.Operation) *OperationListResponse {
	responses := make([]OperationResponse, len(ops))
	for i, op := range ops {
		responses[i] = *ToOperationResponse(op)
	}
	return &OperationListResponse{Data: responses}
}
