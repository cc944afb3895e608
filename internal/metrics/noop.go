package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncTransactionSettled is a no-op.
func (n *NoopRecorder) IncTransactionSettled() {}

// IncTransactionInsufficientBalance is a no-op.
func (n *NoopRecorder) IncTransactionInsufficientBalance() {}

// IncTransactionExecutionFailed is a no-op.
func (n *NoopRecorder) IncTransactionExecutionFailed() {}

// ObserveTransactionDuration is a no-op.
func (n *NoopRecorder) ObserveTransactionDuration(duration time.Duration) {}

// IncOperationCacheHit is a no-op.
func (n *NoopRecorder) IncOperationCacheHit() {}

// IncOperationCacheMiss is a no-op.
func (n *NoopRecorder) IncOperationCacheMiss() {}

// IncLoginSucceeded is a no-op.
func (n *NoopRecorder) IncLoginSucceeded() {}

// IncLoginFailed is a no-op.
func (n *NoopRecorder) IncLoginFailed() {}
