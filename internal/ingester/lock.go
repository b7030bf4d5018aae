package ingester

import "sync/atomic"

// IngestLock provides non-blocking lock semantics using atomic
// operations, so a second ingest attempt fails fast instead of queueing
// behind a long-running one.
type IngestLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *IngestLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *IngestLock) Release() {
	l.state.Store(0)
}
