package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one row of the audit ledger: a single balance-debiting
// transaction, snapshotted at execution time. Amount and UserBalance
// are copies, not live references; once written, every field except
// the Deleted tombstone is immutable.
type Record struct {
	ID                int64           `json:"id"`
	OperationID       int64           `json:"operation_id"`
	UserID            int64           `json:"user_id"`
	Amount            decimal.Decimal `json:"amount"`
	UserBalance       decimal.Decimal `json:"user_balance"`
	OperationResponse string          `json:"operation_response"`
	CreatedAt         time.Time       `json:"created_at"`
	Deleted           bool            `json:"deleted"`
}
