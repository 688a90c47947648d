package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"coverwall/internal/search"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

const cleanupInterval = 10 * time.Minute

type sessionEntry struct {
	session  *search.Session
	lastUsed time.Time
}

// SessionManager tracks client sessions and fans their state out to
// subscribers.
type SessionManager struct {
	newSession func() *search.Session
	retention  time.Duration
	clock      clockwork.Clock

	mu        sync.RWMutex
	sessions  map[string]*sessionEntry
	listeners map[string][]chan search.Snapshot
}

// NewSessionManager creates a manager. Sessions unused for longer than
// retention are dropped by the cleanup loop.
func NewSessionManager(newSession func() *search.Session, retention time.Duration, clock clockwork.Clock) *SessionManager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionManager{
		newSession: newSession,
		retention:  retention,
		clock:      clock,
		sessions:   make(map[string]*sessionEntry),
		listeners:  make(map[string][]chan search.Snapshot),
	}
}

// Create starts a new idle session and returns its ID.
func (sm *SessionManager) Create() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	id := uuid.NewString()
	sm.sessions[id] = &sessionEntry{session: sm.newSession(), lastUsed: sm.clock.Now()}
	return id
}

// Get returns the session for id and marks it as used.
func (sm *SessionManager) Get(id string) (*search.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	e, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastUsed = sm.clock.Now()
	return e.session, nil
}

// Len returns the number of live sessions.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// StartCleanup drops idle sessions on a ticker until ctx is cancelled.
// onTick runs after every sweep.
func (sm *SessionManager) StartCleanup(ctx context.Context, onTick func()) {
	go func() {
		ticker := sm.clock.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				sm.cleanup()
				if onTick != nil {
					onTick()
				}
			}
		}
	}()
}

func (sm *SessionManager) cleanup() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := sm.clock.Now().Add(-sm.retention)
	removed := 0
	for id, e := range sm.sessions {
		if e.lastUsed.Before(cutoff) {
			e.session.Reset()
			delete(sm.sessions, id)
			for _, ch := range sm.listeners[id] {
				close(ch)
			}
			delete(sm.listeners, id)
			removed++
		}
	}
	return removed
}

// Subscribe registers for state updates of a session.
func (sm *SessionManager) Subscribe(id string) <-chan search.Snapshot {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan search.Snapshot, 10)
	sm.listeners[id] = append(sm.listeners[id], ch)
	return ch
}

// Unsubscribe removes a listener. It is a no-op if cleanup already closed it.
func (sm *SessionManager) Unsubscribe(id string, ch <-chan search.Snapshot) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	listeners := sm.listeners[id]
	for i, listener := range listeners {
		if listener == ch {
			sm.listeners[id] = append(listeners[:i], listeners[i+1:]...)
			close(listener)
			break
		}
	}
}

// Notify pushes the current state of a session to its listeners. Slow
// listeners miss updates rather than block.
func (sm *SessionManager) Notify(id string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	e, ok := sm.sessions[id]
	if !ok {
		return
	}
	snap := e.session.Snapshot()
	for _, ch := range sm.listeners[id] {
		select {
		case ch <- snap:
		default:
		}
	}
}
