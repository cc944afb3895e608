package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/opmeter/opmeter/internal/model"
)

const (
	// operationPrefix is the Redis key prefix for catalog entries.
	operationPrefix = "operation:"
	// operationTTL bounds how long a catalog entry is cached. Operations
	// are immutable, so the TTL only limits memory, not staleness.
	operationTTL = time.Hour
)

// GetOperation retrieves a cached catalog operation by ID.
// Returns nil on a miss.
func (c *Cache) GetOperation(ctx context.Context, id int64) (*model.Operation, error) {
	data, err := c.client.Get(ctx, operationKey(id)).Bytes()
	if err != nil {
		// Miss is not an error
		return nil, nil //nolint:nilerr
	}

	var op model.Operation
	if err := json.Unmarshal(data, &op); err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &op, nil
}

// SetOperation caches a catalog operation.
func (c *Cache) SetOperation(ctx context.Context, op *model.Operation) error {
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}

	if err := c.client.Set(ctx, operationKey(op.ID), data, operationTTL).Err(); err != nil {
		return fmt.Errorf("set operation: %w", err)
	}
	return nil
}

func operationKey(id int64) string {
	return operationPrefix + strconv.FormatInt(id, 10)
}
