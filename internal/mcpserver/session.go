package mcpserver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"codegraph/internal/logging"
)

// defaultEventBufferSize bounds the replay buffer §4.8 requires ("an SSE
// event buffer (bounded; eviction drops oldest on overflow)").
const defaultEventBufferSize = 256

type sseEvent struct {
	id   uint64
	name string
	data []byte
}

type subscriber struct {
	ch chan sseEvent
}

// Session is one HTTP/SSE client's server-side state (§4.8): a bounded
// event buffer for progress/result delivery and replay after a reconnect,
// and an in-flight request map so "notifications/cancelled" can reach the
// right context.CancelFunc.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	lastSeenAt  time.Time
	nextEventID uint64
	events      []sseEvent
	subscribers map[*subscriber]uint64 // subscriber -> last delivered event id
	inflight    map[string]context.CancelFunc
	closed      bool
}

func newSession() *Session {
	now := time.Now()
	return &Session{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		lastSeenAt:  now,
		subscribers: make(map[*subscriber]uint64),
		inflight:    make(map[string]context.CancelFunc),
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeenAt = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeenAt)
}

// Publish appends an event to the bounded buffer and fans it out to every
// live subscriber. Slow subscribers never block publication: a full
// subscriber channel just misses the live push and catches up on its next
// Subscribe-with-replay (or not at all, if its own buffer window already
// moved past the event — the same "drop oldest on overflow" policy applies
// uniformly).
func (s *Session) Publish(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.nextEventID++
	ev := sseEvent{id: s.nextEventID, name: name, data: data}

	s.events = append(s.events, ev)
	if len(s.events) > defaultEventBufferSize {
		s.events = s.events[len(s.events)-defaultEventBufferSize:]
	}

	for sub := range s.subscribers {
		select {
		case sub.ch <- ev:
			s.subscribers[sub] = ev.id
		default:
			logging.MCPDebug("session %s: subscriber channel full, dropping live event %d", s.ID, ev.id)
		}
	}
}

// Subscribe registers a new listener, replaying buffered events with
// id > sinceID before returning it. Call Unsubscribe when done.
func (s *Session) Subscribe(sinceID uint64) *subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &subscriber{ch: make(chan sseEvent, defaultEventBufferSize)}
	for _, ev := range s.events {
		if ev.id > sinceID {
			sub.ch <- ev
		}
	}
	s.subscribers[sub] = sinceID
	return sub
}

func (s *Session) Unsubscribe(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, sub)
}

// RegisterInflight associates requestID with cancel so a later
// notifications/cancelled can abort it.
func (s *Session) RegisterInflight(requestID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight[requestID] = cancel
}

func (s *Session) ClearInflight(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, requestID)
}

// CancelInflight cancels requestID's context if it is still running.
func (s *Session) CancelInflight(requestID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.inflight[requestID]
	if ok {
		cancel()
	}
	return ok
}

// Close marks the session dead and unblocks every subscriber.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, cancel := range s.inflight {
		cancel()
	}
	for sub := range s.subscribers {
		close(sub.ch)
	}
	s.subscribers = nil
}

// SessionManager allocates and tracks sessions, evicting ones idle past
// idleTimeout (§4.8: "a session terminates on ... client disconnect plus
// idle timeout").
type SessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	idleTimeout time.Duration
}

func NewSessionManager(idleTimeout time.Duration) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		idleTimeout: idleTimeout,
	}
}

func (m *SessionManager) Create() *Session {
	sess := newSession()
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess
}

func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if ok {
		sess.touch()
	}
	return sess, ok
}

// SweepIdle closes and removes every session idle past idleTimeout. Callers
// run this on a ticker; it is also safe to call from a single background
// goroutine for the process lifetime of the server.
func (m *SessionManager) SweepIdle() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		if sess.idleSince(now) > m.idleTimeout {
			sess.Close()
			delete(m.sessions, id)
			logging.MCPInfo("session %s evicted after idle timeout", id)
		}
	}
}

func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[id]; ok {
		sess.Close()
		delete(m.sessions, id)
	}
}
