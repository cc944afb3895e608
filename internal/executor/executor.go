// Package executor maps catalog operation types to their computations.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/opmeter/opmeter/internal/model"
)

// Executor errors.
var (
	// ErrUnsupportedOperation indicates a type outside the known set.
	// Surfaced to callers as a client error, not a server fault.
	ErrUnsupportedOperation = errors.New("unsupported operation type")
	// ErrExecutionFailed indicates the operation itself failed, e.g. the
	// outbound randomness call. The transaction must not debit.
	ErrExecutionFailed = errors.New("operation execution failed")
)

// Executor runs operations. The arithmetic variants are placeholders
// over fixed operands (1 and 1); random_string performs one best-effort
// outbound call to a randomness provider.
type Executor struct {
	client    *resty.Client
	randomURL string
	logger    *slog.Logger
}

// New creates an Executor. The timeout bounds the outbound randomness
// call; the upstream protocol defines none of its own.
func New(randomURL string, timeout time.Duration, logger *slog.Logger) *Executor {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "opmeter/1.0")

	return &Executor{
		client:    client,
		randomURL: randomURL,
		logger:    logger,
	}
}

// Execute runs the computation for the given operation type and returns
// its textual result. The switch is exhaustive over the closed type set.
func (e *Executor) Execute(ctx context.Context, typ model.OperationType) (string, error) {
	switch typ {
	case model.OpAddition:
		return "2", nil // 1 + 1
	case model.OpSubtraction:
		return "0", nil // 1 - 1
	case model.OpMultiplication:
		return "1", nil // 1 * 1
	case model.OpDivision:
		return "1", nil // 1 / 1
	case model.OpSquareRoot:
		return "1", nil // sqrt(1)
	case model.OpRandomString:
		return e.randomString(ctx)
	default:
		return "", ErrUnsupportedOperation
	}
}

// randomString fetches one random string from the configured provider.
// A single call, no retries; failure propagates as an execution error.
func (e *Executor) randomString(ctx context.Context) (string, error) {
	resp, err := e.client.R().SetContext(ctx).Get(e.randomURL)
	if err != nil {
		e.logger.Warn("random string fetch failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrExecutionFailed, err)
	}
	if resp.StatusCode() != http.StatusOK {
		e.logger.Warn("random string provider returned non-OK status",
			"status", resp.StatusCode(),
		)
		return "", fmt.Errorf("%w: provider status %d", ErrExecutionFailed, resp.StatusCode())
	}

	result := strings.TrimSpace(string(resp.Body()))
	if result == "" {
		return "", fmt.Errorf("%w: empty provider response", ErrExecutionFailed)
	}
	return result, nil
}
