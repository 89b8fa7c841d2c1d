package identity

import "sync"

// Event types emitted on the session bus.
const (
	EventSignedIn  = "signed-in"
	EventSignedOut = "signed-out"
	EventDeleted   = "deleted"
)

// SessionEvent describes a change in who is signed in.
type SessionEvent struct {
	Type        string
	UserID      string
	Email       string
	DisplayName string
}

// Sessions is a process-local observer bus for session changes.
// Subscribers register a callback and get back an unsubscribe
// function; callbacks run synchronously on the publishing goroutine.
type Sessions struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(SessionEvent)
}

func NewSessions() *Sessions {
	return &Sessions{subs: make(map[int]func(SessionEvent))}
}

func (s *Sessions) Subscribe(fn func(SessionEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Sessions) Publish(ev SessionEvent) {
	s.mu.Lock()
	fns := make([]func(SessionEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
