package session

import (
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/order"
	"github.com/google/uuid"
)

const (
	// DefaultTTL is how long an untouched session is kept
	DefaultTTL = 2 * time.Hour

	// CleanupInterval is how often idle sessions are evicted
	CleanupInterval = time.Minute
)

// SubmitterFactory builds the order submitter for a new session.
type SubmitterFactory func(sessionID string) *order.Submitter

// Registry keeps sessions in memory. Cart state is never persisted, so an
// evicted session is simply gone.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	newSubmitter SubmitterFactory
	ttl          time.Duration
	now          func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewRegistry(ttl, cleanupInterval time.Duration, newSubmitter SubmitterFactory) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = CleanupInterval
	}
	r := &Registry{
		sessions:     make(map[string]*Session),
		newSubmitter: newSubmitter,
		ttl:          ttl,
		now:          time.Now,
		stopCleanup:  make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop(cleanupInterval)

	return r
}

// Create starts a new session with a random id.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	s := New(id, r.newSubmitter(id))
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return s
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch(r.now())
	}
	return s, ok
}

// Resolve returns the session for id, or a new one when id is empty or
// unknown. The returned bool reports whether a session was created.
func (r *Registry) Resolve(id string) (*Session, bool) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(), true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) cleanupLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expireSessions()
		case <-r.stopCleanup:
			return
		}
	}
}

// expireSessions drops sessions idle longer than the TTL, except those
// with an order submission in flight.
func (r *Registry) expireSessions() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	expired := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) && !s.submitter.Submitting() {
			delete(r.sessions, id)
			expired++
		}
	}
	return expired
}

// Close stops the background cleanup and waits for it and for pending
// order notifications to finish.
func (r *Registry) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()

	r.mu.RLock()
	submitters := make([]*order.Submitter, 0, len(r.sessions))
	for _, s := range r.sessions {
		submitters = append(submitters, s.submitter)
	}
	r.mu.RUnlock()

	for _, sub := range submitters {
		sub.Wait()
	}
	return nil
}
