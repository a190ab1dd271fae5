package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/iliyamo/event-seat-booking/internal/model"
)

// MemoryStore keeps sessions in process memory.  Sessions idle for longer
// than the TTL are treated as abandoned: they are removed when next
// accessed, and swept whenever a new principal gets a session.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	mu      sync.Mutex
	session model.BookingSession
	touched time.Time
	dead    bool
}

// NewMemoryStore returns an empty store.  A non-positive ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: map[string]*memoryEntry{}, ttl: ttl, now: time.Now}
}

// lock returns the principal's entry with its mutex held.  When create is
// false a principal without a live session yields nil.
func (m *MemoryStore) lock(principal string, create bool) *memoryEntry {
	for {
		m.mu.Lock()
		e, ok := m.entries[principal]
		if !ok {
			if !create {
				m.mu.Unlock()
				return nil
			}
			m.sweepLocked()
			e = &memoryEntry{session: empty(), touched: m.now()}
			m.entries[principal] = e
		}
		m.mu.Unlock()

		e.mu.Lock()
		if !e.dead {
			return e
		}
		// evicted between lookup and lock
		e.mu.Unlock()
	}
}

// sweepLocked drops idle entries.  Busy entries are skipped.  m.mu must be
// held.
func (m *MemoryStore) sweepLocked() {
	for k, e := range m.entries {
		if !e.mu.TryLock() {
			continue
		}
		if m.expired(e) {
			e.dead = true
			delete(m.entries, k)
		}
		e.mu.Unlock()
	}
}

// evict removes e, whose mutex the caller holds.
func (m *MemoryStore) evict(principal string, e *memoryEntry) {
	e.dead = true
	m.mu.Lock()
	if m.entries[principal] == e {
		delete(m.entries, principal)
	}
	m.mu.Unlock()
}

func (m *MemoryStore) expired(e *memoryEntry) bool {
	return m.ttl > 0 && m.now().Sub(e.touched) > m.ttl
}

// Get returns a copy of the principal's session.  It does not create one.
func (m *MemoryStore) Get(_ context.Context, principal string) (model.BookingSession, error) {
	e := m.lock(principal, false)
	if e == nil {
		return empty(), nil
	}
	defer e.mu.Unlock()
	if m.expired(e) {
		m.evict(principal, e)
		return empty(), nil
	}
	return clone(e.session)
}

// Update runs fn on a copy under the principal's lock and stores it when
// fn succeeds.
func (m *MemoryStore) Update(_ context.Context, principal string, fn Mutator) (model.BookingSession, error) {
	e := m.lock(principal, true)
	defer e.mu.Unlock()
	if m.expired(e) {
		e.session = empty()
	}

	next, err := clone(e.session)
	if err != nil {
		return model.BookingSession{}, err
	}
	if err := fn(&next); err != nil {
		return model.BookingSession{}, err
	}
	next.UpdatedAt = m.now().UTC()
	normalize(&next)
	e.session = next
	e.touched = m.now()
	return clone(next)
}

// Delete drops the principal's session.
func (m *MemoryStore) Delete(_ context.Context, principal string) error {
	if e := m.lock(principal, false); e != nil {
		m.evict(principal, e)
		e.mu.Unlock()
	}
	return nil
}

// clone deep-copies a session so callers never share slices or maps with
// the store.
func clone(s model.BookingSession) (model.BookingSession, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return model.BookingSession{}, err
	}
	var out model.BookingSession
	if err := json.Unmarshal(b, &out); err != nil {
		return model.BookingSession{}, err
	}
	normalize(&out)
	return out, nil
}
