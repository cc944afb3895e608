package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TransactionsSettled             uint64
	TransactionsInsufficientBalance uint64
	TransactionsExecutionFailed     uint64
	TransactionDurationCount        uint64
	TransactionDurationTotalNs      int64
	OperationCacheHits              uint64
	OperationCacheMisses            uint64
	LoginsSucceeded                 uint64
	LoginsFailed                    uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	transactionsSettled             uint64
	transactionsInsufficientBalance uint64
	transactionsExecutionFailed     uint64
	transactionDurationCount        uint64
	transactionDurationTotalNs      int64
	operationCacheHits              uint64
	operationCacheMisses            uint64
	loginsSucceeded                 uint64
	loginsFailed                    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		TransactionsSettled:             atomic.LoadUint64(&m.transactionsSettled),
		TransactionsInsufficientBalance: atomic.LoadUint64(&m.transactionsInsufficientBalance),
		TransactionsExecutionFailed:     atomic.LoadUint64(&m.transactionsExecutionFailed),
		TransactionDurationCount:        atomic.LoadUint64(&m.transactionDurationCount),
		TransactionDurationTotalNs:      atomic.LoadInt64(&m.transactionDurationTotalNs),
		OperationCacheHits:              atomic.LoadUint64(&m.operationCacheHits),
		OperationCacheMisses:            atomic.LoadUint64(&m.operationCacheMisses),
		LoginsSucceeded:                 atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:                    atomic.LoadUint64(&m.loginsFailed),
	}
}

// IncTransactionSettled increments the settled transaction counter.
func (m *InMemoryRecorder) IncTransactionSettled() {
	atomic.AddUint64(&m.transactionsSettled, 1)
}

// IncTransactionInsufficientBalance increments the admission-failure counter.
func (m *InMemoryRecorder) IncTransactionInsufficientBalance() {
	atomic.AddUint64(&m.transactionsInsufficientBalance, 1)
}

// IncTransactionExecutionFailed increments the execution-failure counter.
func (m *InMemoryRecorder) IncTransactionExecutionFailed() {
	atomic.AddUint64(&m.transactionsExecutionFailed, 1)
}

// ObserveTransactionDuration records transaction duration.
func (m *InMemoryRecorder) ObserveTransactionDuration(duration time.Duration) {
	atomic.AddUint64(&m.transactionDurationCount, 1)
	atomic.AddInt64(&m.transactionDurationTotalNs, duration.Nanoseconds())
}

// IncOperationCacheHit increments the catalog cache hit counter.
func (m *InMemoryRecorder) IncOperationCacheHit() {
	atomic.AddUint64(&m.operationCacheHits, 1)
}

// IncOperationCacheMiss increments the catalog cache miss counter.
func (m *InMemoryRecorder) IncOperationCacheMiss() {
	atomic.AddUint64(&m.operationCacheMisses, 1)
}

// IncLoginSucceeded increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSucceeded() {
	atomic.AddUint64(&m.loginsSucceeded, 1)
}

// IncLoginFailed increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailed() {
	atomic.AddUint64(&m.loginsFailed, 1)
}
