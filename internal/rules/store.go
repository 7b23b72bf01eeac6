package rules

import (
	"sync"
	"sync/atomic"
)

// Store holds the active rule table. Readers always see one whole table.
type Store struct {
	current atomic.Pointer[Table]

	mu       sync.Mutex
	onChange []func(*Table)
}

// NewStore creates a Store serving initial (an empty table when nil).
func NewStore(initial *Table) *Store {
	s := &Store{}
	if initial == nil {
		initial = NewTable(nil)
	}
	s.current.Store(initial)
	return s
}

// Current returns the active table.
func (s *Store) Current() *Table {
	return s.current.Load()
}

// OnChange registers a callback run after each swap, in registration order.
func (s *Store) OnChange(fn func(*Table)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Swap installs t and returns the table it replaced.
func (s *Store) Swap(t *Table) *Table {
	if t == nil {
		t = NewTable(nil)
	}
	old := s.current.Swap(t)

	s.mu.Lock()
	callbacks := make([]func(*Table), len(s.onChange))
	copy(callbacks, s.onChange)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(t)
	}
	return old
}
