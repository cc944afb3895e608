package model

import "github.com/shopspring/decimal"

// OperationType identifies the computation an operation performs.
// The set is closed: anything outside these six values is rejected at
// the boundary and the executor switches over them exhaustively.
type OperationType string

const (
	OpAddition       OperationType = "addition"
	OpSubtraction    OperationType = "subtraction"
	OpMultiplication OperationType = "multiplication"
	OpDivision       OperationType = "division"
	OpSquareRoot     OperationType = "square_root"
	OpRandomString   OperationType = "random_string"
)

// OperationTypes lists every known operation type in a stable order.
var OperationTypes = []OperationType{
	OpAddition,
	OpSubtraction,
	OpMultiplication,
	OpDivision,
	OpSquareRoot,
	OpRandomString,
}

// IsValid reports whether the type is one of the six known values.
func (t OperationType) IsValid() bool {
	switch t {
	case OpAddition, OpSubtraction, OpMultiplication, OpDivision, OpSquareRoot, OpRandomString:
		return true
	}
	return false
}

// Operation is a priced, named computation from the catalog.
// Operations are immutable once created and are referenced by ledger
// records indefinitely.
type Operation struct {
	ID   int64           `json:"id"`
	Type OperationType   `json:"type"`
	Cost decimal.Decimal `json:"cost"`
}
