// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/opmeter/opmeter/internal/model"
)

// RegisterUserRequest represents the request body for registration.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse represents a user profile in API responses. Balances are
// rendered as JSON numbers; the stored values stay exact decimals.
type UserResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
	Status   string  `json:"status"`
}

// TokenResponse represents a successful credential exchange.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Balance:  user.Balance.InexactFloat64(),
		Status:   string(user.Status),
	}
}
