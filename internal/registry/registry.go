package registry

import (
	"auction-hub/internal/auctionerrors"
	"auction-hub/internal/models"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Store owns every event aggregate and serializes all mutations to one
// event behind that event's mutex. All reads that inform a mutation and
// the mutation itself run inside a single critical section, which is what
// resolves concurrent bids and concurrent joins one at a time.
type Store struct {
	mu     sync.RWMutex
	events map[uint64]*eventEntry
	order  []uint64 // event ids in creation order

	nextEventID atomic.Uint64
	nextItemID  atomic.Uint64

	sessMu   sync.Mutex
	sessions map[string]*models.Session // session id -> current binding
}

type eventEntry struct {
	mu sync.Mutex
	ev *models.Event
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		events:   make(map[uint64]*eventEntry),
		sessions: make(map[string]*models.Session),
	}
}

// Insert assigns the next event id and registers the event. Events are
// never deleted for the life of the process.
func (s *Store) Insert(ev *models.Event) uint64 {
	id := s.nextEventID.Add(1)
	ev.ID = id
	ev.CreatedAt = time.Now().UTC()
	if ev.Participants == nil {
		ev.Participants = make(map[string]string)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[id] = &eventEntry{ev: ev}
	s.order = append(s.order, id)
	return id
}

// NextItemID returns a fresh item id, unique across the whole system.
func (s *Store) NextItemID() uint64 {
	return s.nextItemID.Add(1)
}

func (s *Store) entry(eventID uint64) (*eventEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("event %d: %w", eventID, auctionerrors.ErrEventNotFound)
	}
	return e, nil
}

// Update runs fn inside the event's critical section. If fn returns an
// error the event is left exactly as fn left it, so fn must validate
// before mutating.
func (s *Store) Update(eventID uint64, fn func(ev *models.Event) error) error {
	e, err := s.entry(eventID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.ev)
}

// View runs fn with the event locked. It shares the mutation path so a
// reader never observes a half-applied command.
func (s *Store) View(eventID uint64, fn func(ev *models.Event) error) error {
	return s.Update(eventID, fn)
}

// ForEachEvent visits every event in creation order, locking each one in
// turn. Used by the expiry sweep.
func (s *Store) ForEachEvent(fn func(ev *models.Event)) {
	s.mu.RLock()
	ids := append([]uint64(nil), s.order...)
	s.mu.RUnlock()

	for _, id := range ids {
		e, err := s.entry(id)
		if err != nil {
			continue
		}
		e.mu.Lock()
		fn(e.ev)
		e.mu.Unlock()
	}
}

// ListSummaries returns redacted summaries of all events in creation order.
func (s *Store) ListSummaries() []models.EventSummary {
	s.mu.RLock()
	ids := append([]uint64(nil), s.order...)
	s.mu.RUnlock()

	summaries := make([]models.EventSummary, 0, len(ids))
	for _, id := range ids {
		e, err := s.entry(id)
		if err != nil {
			continue
		}
		e.mu.Lock()
		summaries = append(summaries, e.ev.Summary())
		e.mu.Unlock()
	}
	return summaries
}

// Bind claims a display name for the session within an event. The
// check-then-set on the participant set happens inside the event's
// critical section, so two concurrent joins for the same name resolve to
// exactly one winner. A session already bound to the same event may not
// switch names; a session bound to another event is released from it
// first. Lock order is always sessMu, then store, then event.
func (s *Store) Bind(sessionID string, eventID uint64, name string) error {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	sess := s.sessions[sessionID]
	if sess != nil && sess.EventID == eventID {
		if sess.Name == name {
			return nil
		}
		return fmt.Errorf("bound as %q: %w", sess.Name, auctionerrors.ErrNameChangeDenied)
	}

	// Claim the name in the target event first. A failed claim must leave
	// any binding in the old event untouched, so release only runs after
	// the claim succeeds. One event lock is held at a time.
	err := s.Update(eventID, func(ev *models.Event) error {
		if holder, taken := ev.Participants[name]; taken && holder != sessionID {
			return fmt.Errorf("name %q: %w", name, auctionerrors.ErrNameConflict)
		}
		ev.Participants[name] = sessionID
		return nil
	})
	if err != nil {
		return err
	}

	if sess != nil {
		s.releaseBinding(sessionID, sess)
	}
	s.sessions[sessionID] = &models.Session{EventID: eventID, Name: name}
	return nil
}

// Release frees the session's display name back to its event. Idempotent;
// safe to call for sessions that never joined anything.
func (s *Store) Release(sessionID string) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	sess := s.sessions[sessionID]
	if sess == nil {
		return
	}
	s.releaseBinding(sessionID, sess)
}

func (s *Store) releaseBinding(sessionID string, sess *models.Session) {
	_ = s.Update(sess.EventID, func(ev *models.Event) error {
		if ev.Participants[sess.Name] == sessionID {
			delete(ev.Participants, sess.Name)
		}
		return nil
	})
	delete(s.sessions, sessionID)
}

// Binding returns the session's current event id and bound name.
func (s *Store) Binding(sessionID string) (eventID uint64, name string, ok bool) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	sess := s.sessions[sessionID]
	if sess == nil {
		return 0, "", false
	}
	return sess.EventID, sess.Name, true
}

// SetPaymentProfile attaches payment details to a joined session.
func (s *Store) SetPaymentProfile(sessionID string, profile *models.PaymentProfile) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	if sess := s.sessions[sessionID]; sess != nil {
		sess.Profile = profile
	}
}
