// Package model defines domain entities for the application.
package model

import "github.com/shopspring/decimal"

// UserStatus is the lifecycle state of a user account.
type UserStatus string

// Known user statuses. Only StatusActive affects behaviour today;
// StatusSuspended is reserved for account moderation.
const (
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
)

// IsValid reports whether the status is a known value.
func (s UserStatus) IsValid() bool {
	return s == StatusActive || s == StatusSuspended
}

// User represents a registered account holding spendable balance.
// Balance is mutated only by the transaction service; it must never
// go negative.
type User struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	HashedPassword string          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	Status         UserStatus      `json:"status"`
}
