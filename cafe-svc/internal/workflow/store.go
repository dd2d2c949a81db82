package workflow

import "sync"

// Reducer folds one action into the current state. It must not mutate the
// slices it was given; snapshots handed out earlier share them.
type Reducer[S, A any] func(state S, action A) S

// Store serializes actions against a single state value.
type Store[S, A any] struct {
	mu     sync.Mutex
	state  S
	reduce Reducer[S, A]
}

func NewStore[S, A any](initial S, reduce Reducer[S, A]) *Store[S, A] {
	return &Store[S, A]{state: initial, reduce: reduce}
}

// Dispatch applies action and returns the resulting snapshot.
func (s *Store[S, A]) Dispatch(action A) S {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.reduce(s.state, action)
	return s.state
}

func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
