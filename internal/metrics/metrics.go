// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Transaction metrics
	IncTransactionSettled()
	IncTransactionInsufficientBalance()
	IncTransactionExecutionFailed()
	ObserveTransactionDuration(duration time.Duration)

	// Catalog cache metrics
	IncOperationCacheHit()
	IncOperationCacheMiss()

	// Auth metrics
	IncLoginSucceeded()
	IncLoginFailed()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
