// Package mailbox provides a single-slot handoff buffer.
package mailbox

import "sync"

// Mailbox holds at most one pending value; the latest Put always wins.
// It is NOT a queue. The backup runner polls it between cycles to pick up
// reloaded configuration, so intermediate values may be dropped.
type Mailbox[T any] struct {
	mu  sync.Mutex
	val *T
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Put stores a value, replacing any pending one. It never blocks.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.val = &v
	m.mu.Unlock()
}

// TryTake returns the pending value if present, or nil. It never blocks.
func (m *Mailbox[T]) TryTake() *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.val
	m.val = nil
	return v
}

// Pending reports whether a value is currently waiting.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.val != nil
}
