package refresh

import "sync"

// Ticket tags one issued fetch. Only the most recently issued ticket may
// write into a Snapshot.
type Ticket uint64

// Snapshot is the transient client copy of remote state owned by one view.
// It is invalidated by counter changes and written only by the latest fetch.
type Snapshot[T any] struct {
	mu       sync.Mutex
	value    T
	loaded   bool
	err      error
	issued   Ticket
	observed uint64
	seen     bool
	closed   bool
}

// Observe records a counter value and reports whether it differs from the
// last one seen. The first observation always reports true.
func (s *Snapshot[T]) Observe(v uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen && s.observed == v {
		return false
	}
	s.seen = true
	s.observed = v
	return true
}

// Begin issues a new ticket, superseding every earlier one.
func (s *Snapshot[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply stores the outcome of the fetch tagged t. Stale tickets and closed
// snapshots are ignored. A failed fetch keeps the previous value.
// Returns whether the outcome was applied.
func (s *Snapshot[T]) Apply(t Ticket, v T, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || t != s.issued {
		return false
	}
	s.err = err
	if err == nil {
		s.value = v
		s.loaded = true
	}
	return true
}

// Get returns the last applied value and whether one has been loaded.
func (s *Snapshot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.loaded
}

// Err returns the error of the last applied fetch, nil after a success.
func (s *Snapshot[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Reset drops the held value and supersedes in-flight fetches.
// Used when the identity behind the data changes.
func (s *Snapshot[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.loaded = false
	s.err = nil
	s.issued++
}

// Close marks the snapshot as torn down; later completions are dropped.
func (s *Snapshot[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
