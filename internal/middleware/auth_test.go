package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opmeter/opmeter/internal/auth"
	"github.com/opmeter/opmeter/internal/handler/dto"
	"github.com/opmeter/opmeter/internal/model"
	"github.com/opmeter/opmeter/internal/service"
)

type fakeResolver struct {
	users map[string]*model.User
	err   error
}

func (f *fakeResolver) ResolveSession(_ context.Context, token string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, service.ErrInvalidSession
	}
	return user, nil
}

func TestAuth(t *testing.T) {
	t.Parallel()

	alice := &model.User{ID: 1, Username: "alice", Status: model.StatusActive}
	suspended := &model.User{ID: 2, Username: "mallory", Status: model.StatusSuspended}

	resolver := &fakeResolver{users: map[string]*model.User{
		"good-token":      alice,
		"suspended-token": suspended,
	}}

	mw := Auth(AuthConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions: resolver,
	})

	var gotUser *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   int64
	}{
		{
			name:       "valid bearer token",
			header:     "Bearer good-token",
			wantStatus: http.StatusOK,
			wantUser:   1,
		},
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "non-bearer scheme",
			header:     "Basic Zm9vOmJhcg==",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown token",
			header:     "Bearer bogus",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "suspended user",
			header:     "Bearer suspended-token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = nil
			req := httptest.NewRequest(http.MethodGet, "/records/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUser != 0 {
				if gotUser == nil || gotUser.ID != tt.wantUser {
					t.Errorf("context user = %+v, want ID %d", gotUser, tt.wantUser)
				}
			}
		})
	}
}

// The 401 body must use the same flat envelope as handler errors, so
// clients and the contract tests can parse it with one schema.
func TestAuth_UnauthorizedBody(t *testing.T) {
	t.Parallel()

	mw := Auth(AuthConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions: &fakeResolver{users: map[string]*model.User{}},
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/records/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	var body dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q does not match the error envelope: %v", rec.Body.String(), err)
	}
	if body.Code != "UNAUTHORIZED" {
		t.Errorf("code = %q, want UNAUTHORIZED", body.Code)
	}
	if body.Error == "" {
		t.Error("error message is empty")
	}
}

// A session store outage is an infrastructure fault, not an invalid
// credential: the response must be a 500, never a 401.
func TestAuth_ResolverFailure(t *testing.T) {
	t.Parallel()

	mw := Auth(AuthConfig{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions: &fakeResolver{err: errors.New("get session: connection refused")},
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/records/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var body dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body %q does not match the error envelope: %v", rec.Body.String(), err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
}
