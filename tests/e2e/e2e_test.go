//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

type userResponse struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
	Status   string  `json:"status"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

type operationResponse struct {
	ID   int64   `json:"id"`
	Type string  `json:"type"`
	Cost float64 `json:"cost"`
}

type recordResponse struct {
	ID                int64   `json:"id"`
	OperationID       int64   `json:"operation_id"`
	UserID            int64   `json:"user_id"`
	Amount            float64 `json:"amount"`
	UserBalance       float64 `json:"user_balance"`
	OperationResponse string  `json:"operation_response"`
	Deleted           bool    `json:"deleted"`
}

type recordListResponse struct {
	Data []recordResponse `json:"data"`
}

// TestE2ESmoke runs the whole metering lifecycle against a live server:
// register, create operation, exchange credentials, run a calculation,
// inspect the ledger, tombstone the record, log out.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("OPMETER_BASE_URL", "http://localhost:8080")
	client := &http.Client{Timeout: 15 * time.Second}

	requireServer(t, client, baseURL)

	// Usernames are unique per run so reruns never collide.
	username := "e2e-" + strings.ToLower(ulid.Make().String())
	password := "pw1"

	// Register
	var profile userResponse
	doJSON(t, client, http.MethodPost, baseURL+"/users/",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, password),
		"", http.StatusOK, &profile)
	if profile.Balance != 100.0 {
		t.Fatalf("starting balance = %v, want 100.0", profile.Balance)
	}
	if profile.Status != "active" {
		t.Fatalf("status = %q, want active", profile.Status)
	}

	// Create an addition operation costing 1.0
	var op operationResponse
	doJSON(t, client, http.MethodPost, baseURL+"/operations/",
		`{"type":"addition","cost":1.0}`,
		"", http.StatusOK, &op)
	if op.Type != "addition" || op.Cost != 1.0 {
		t.Fatalf("unexpected operation: %+v", op)
	}

	// Exchange credentials for a bearer token
	token := fetchToken(t, client, baseURL, username, password)
	if token.AccessToken == "" || token.AccessToken == username {
		t.Fatalf("bad access token %q", token.AccessToken)
	}
	if token.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", token.TokenType)
	}

	// Calculate: 100.0 -> 99.0, placeholder addition result "2"
	var rec recordResponse
	doJSON(t, client, http.MethodPost, baseURL+"/calculate/",
		fmt.Sprintf(`{"operation_id":%d}`, op.ID),
		token.AccessToken, http.StatusOK, &rec)
	if rec.Amount != 1.0 || rec.UserBalance != 99.0 {
		t.Fatalf("amount/balance = %v/%v, want 1.0/99.0", rec.Amount, rec.UserBalance)
	}
	if rec.OperationResponse != "2" {
		t.Fatalf("operation_response = %q, want \"2\"", rec.OperationResponse)
	}

	// The ledger lists exactly that record
	var list recordListResponse
	doJSON(t, client, http.MethodGet, baseURL+"/records/", "", token.AccessToken, http.StatusOK, &list)
	if len(list.Data) != 1 || list.Data[0].ID != rec.ID {
		t.Fatalf("unexpected listing: %+v", list.Data)
	}

	// Tombstone it; the listing goes empty, the point lookup still works
	var deleted recordResponse
	doJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/records/%d", baseURL, rec.ID),
		"", token.AccessToken, http.StatusOK, &deleted)
	if !deleted.Deleted {
		t.Fatal("delete should return the tombstoned record")
	}

	doJSON(t, client, http.MethodGet, baseURL+"/records/", "", token.AccessToken, http.StatusOK, &list)
	if len(list.Data) != 0 {
		t.Fatalf("listing after delete = %+v, want empty", list.Data)
	}

	var point recordResponse
	doJSON(t, client, http.MethodGet, fmt.Sprintf("%s/records/%d", baseURL, rec.ID),
		"", token.AccessToken, http.StatusOK, &point)
	if !point.Deleted {
		t.Fatal("point lookup should report deleted=true")
	}

	// Logout revokes the token
	doBare(t, client, http.MethodPost, baseURL+"/logout", token.AccessToken, http.StatusNoContent)
	doBare(t, client, http.MethodGet, baseURL+"/records/", token.AccessToken, http.StatusUnauthorized)
}

// TestE2EInsufficientBalance asks for more than the starting balance
// covers and verifies the rejection leaves no trace.
func TestE2EInsufficientBalance(t *testing.T) {
	baseURL := envOrDefault("OPMETER_BASE_URL", "http://localhost:8080")
	client := &http.Client{Timeout: 15 * time.Second}

	requireServer(t, client, baseURL)

	username := "e2e-" + strings.ToLower(ulid.Make().String())
	doJSON(t, client, http.MethodPost, baseURL+"/users/",
		fmt.Sprintf(`{"username":%q,"password":"pw"}`, username),
		"", http.StatusOK, nil)

	var op operationResponse
	doJSON(t, client, http.MethodPost, baseURL+"/operations/",
		`{"type":"multiplication","cost":100000}`,
		"", http.StatusOK, &op)

	token := fetchToken(t, client, baseURL, username, "pw")

	doJSON(t, client, http.MethodPost, baseURL+"/calculate/",
		fmt.Sprintf(`{"operation_id":%d}`, op.ID),
		token.AccessToken, http.StatusBadRequest, nil)

	// No record was written
	var list recordListResponse
	doJSON(t, client, http.MethodGet, baseURL+"/records/", "", token.AccessToken, http.StatusOK, &list)
	if len(list.Data) != 0 {
		t.Fatalf("rejected transaction left records: %+v", list.Data)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func requireServer(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		t.Skipf("server not available at %s: %v", baseURL, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func fetchToken(t *testing.T, client *http.Client, baseURL, username, password string) tokenResponse {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("building token request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("token request: %v", err)
	}

	var token tokenResponse
	decodeAndClose(t, resp, http.StatusOK, &token)
	return token
}

// doJSON issues a JSON request, asserts the status, and decodes into out
// when out is non-nil.
func doJSON(t *testing.T, client *http.Client, method, target, body, token string, wantStatus int, out any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		t.Fatalf("building %s %s: %v", method, target, err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	decodeAndClose(t, resp, wantStatus, out)
}

// doBare issues a bodyless request and asserts the status only.
func doBare(t *testing.T, client *http.Client, method, target, token string, wantStatus int) {
	t.Helper()

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		t.Fatalf("building %s %s: %v", method, target, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s status = %d, want %d", method, target, resp.StatusCode, wantStatus)
	}
}

func decodeAndClose(t *testing.T, resp *http.Response, wantStatus int, out any) {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, wantStatus, raw)
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decoding response: %v; body: %s", err, raw)
	}
}
