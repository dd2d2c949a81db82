package httpapi

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"cafe-checkout/cafe-svc/internal/utils"
	"cafe-checkout/cafe-svc/internal/workflow"
)

type sessionEntry struct {
	order    *workflow.Order
	lastSeen time.Time
}

// Sessions keeps the customer checkout sessions of this process, keyed by
// session id. A session untouched for longer than ttl is dropped by Sweep.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	newOrder func() *workflow.Order
	ttl      time.Duration
	now      func() time.Time
}

// NewSessions creates a registry whose sessions expire after ttl of
// inactivity. A ttl of zero keeps sessions until they are deleted.
func NewSessions(newOrder func() *workflow.Order, ttl time.Duration) *Sessions {
	return &Sessions{
		sessions: make(map[string]*sessionEntry),
		newOrder: newOrder,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Sessions) Create() (string, *workflow.Order) {
	id := utils.UUID()
	order := s.newOrder()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &sessionEntry{order: order, lastSeen: s.now()}
	return id, order
}

// Get returns the session and marks it as used.
func (s *Sessions) Get(id string) (*workflow.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok || s.expired(entry) {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.order, true
}

func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Sweep drops every expired session and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				log.WithField("removed", removed).Debug("expired checkout sessions")
			}
		}
	}
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Sessions) expired(entry *sessionEntry) bool {
	return s.ttl > 0 && s.now().Sub(entry.lastSeen) > s.ttl
}
