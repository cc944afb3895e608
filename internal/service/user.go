// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/opmeter/opmeter/internal/auth"
	"github.com/opmeter/opmeter/internal/metrics"
	"github.com/opmeter/opmeter/internal/model"
	"github.com/opmeter/opmeter/internal/repository"
)

// User service errors.
var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUsernameTaken   = errors.New("username already registered")
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords; callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSession indicates a bearer token that resolves to no user.
	ErrInvalidSession = errors.New("invalid session")
)

const maxUsernameLength = 64

// UserStore is the credential-store contract the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, hashedPassword string, balance decimal.Decimal) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// SessionStore holds issued bearer sessions.
type SessionStore interface {
	SetSession(ctx context.Context, cacheKey string, session *model.Session, ttl time.Duration) error
	GetSession(ctx context.Context, cacheKey string) (*model.Session, error)
	DeleteSession(ctx context.Context, cacheKey string) error
}

// UserService handles registration, authentication and bearer sessions.
//
// The bearer credential is an opaque server-side session token rather
// than a bare username: swapping in a signed or expiring scheme later
// only touches this service and the auth package, never the transaction
// path.
type UserService struct {
	users           UserStore
	sessions        SessionStore
	sessionTTL      time.Duration
	startingBalance decimal.Decimal
	metrics         metrics.Recorder
}

// NewUserService creates a new UserService. startingBalance is granted
// to every registered user.
func NewUserService(users UserStore, sessions SessionStore, sessionTTL time.Duration, startingBalance decimal.Decimal, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		users:           users,
		sessions:        sessions,
		sessionTTL:      sessionTTL,
		startingBalance: startingBalance,
		metrics:         recorder,
	}
}

// Register creates a new user with the starting balance and active status.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > maxUsernameLength {
		return nil, ErrInvalidUsername
	}
	if password == "" {
		return nil, ErrInvalidPassword
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hashed, s.startingBalance)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// LoginResult is the outcome of a successful authentication.
type LoginResult struct {
	User  *model.User
	Token string // plaintext bearer token, shown once
}

// Login verifies the credentials and issues a bearer session token.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	session := &model.Session{
		UserID:   user.ID,
		Username: user.Username,
		IssuedAt: time.Now().UTC(),
	}
	if err := s.sessions.SetSession(ctx, auth.CacheKey(token.Plaintext), session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &LoginResult{User: user, Token: token.Plaintext}, nil
}

// Authenticate verifies an identity/secret pair against the credential
// store. It has no side effects.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailed()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, user.HashedPassword)
	if err != nil || !ok {
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLoginSucceeded()
	return user, nil
}

// ResolveSession resolves a bearer token to its user. The user row is
// re-read so the caller always sees the current balance, not the one at
// login time.
func (s *UserService) ResolveSession(ctx context.Context, token string) (*model.User, error) {
	if _, err := auth.ParseToken(token); err != nil {
		return nil, ErrInvalidSession
	}

	session, err := s.sessions.GetSession(ctx, auth.CacheKey(token))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	return user, nil
}

// Logout revokes the bearer session.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if _, err := auth.ParseToken(token); err != nil {
		return ErrInvalidSession
	}
	return s.sessions.DeleteSession(ctx, auth.CacheKey(token))
}
