// Package session keeps the mounted viewers of "floorview serve".
//
// A browser creates a session, which mounts a viewer for one floor. The
// viewer keeps running between requests, applying realtime patches as they
// arrive, so the next request sees the live state. Sessions expire after
// a period without requests; expiry and deletion unmount the viewer.
//
//	store := session.NewStore(30*time.Minute, 1000)
//	go store.Run(ctx, time.Minute)
//
//	sess := session.New("ground", mount, resizer, intents)
//	if err := store.Add(sess); err != nil {
//	    mount.Close()
//	}
package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan/viewer"
)

// DefaultTTL is the idle time after which a session expires.
const DefaultTTL = 30 * time.Minute

// ErrFull is returned by [Store.Add] when the store is at capacity.
var ErrFull = errors.New(errors.ErrCodeUnsupported, "too many viewer sessions")

// Session is one mounted viewer.
type Session struct {
	ID        string
	FloorID   string
	CreatedAt time.Time

	Mount   *viewer.Mount
	Resize  *viewer.Resizer
	Intents *viewer.Intents

	expiresAt time.Time
}

// New returns a session with a fresh id.
func New(floorID string, m *viewer.Mount, r *viewer.Resizer, in *viewer.Intents) *Session {
	return &Session{
		ID:        uuid.NewString(),
		FloorID:   floorID,
		CreatedAt: time.Now(),
		Mount:     m,
		Resize:    r,
		Intents:   in,
	}
}

// ExpiresAt returns when the session will expire if left idle.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

func (s *Session) close() {
	if s.Mount != nil {
		_ = s.Mount.Close()
	}
}

// Store holds sessions in memory, safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewStore returns a store whose sessions expire after ttl idle. max <= 0
// means unbounded.
func NewStore(ttl time.Duration, max int) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{sessions: make(map[string]*Session), ttl: ttl, max: max, now: time.Now}
}

// Add registers s. It fails with [ErrFull] at capacity, after first
// evicting expired sessions.
func (st *Store) Add(s *Session) error {
	st.mu.Lock()
	var victims []*Session
	if st.max > 0 && len(st.sessions) >= st.max {
		victims = st.evictLocked()
	}
	full := st.max > 0 && len(st.sessions) >= st.max
	if !full {
		s.expiresAt = st.now().Add(st.ttl)
		st.sessions[s.ID] = s
	}
	st.mu.Unlock()

	for _, v := range victims {
		v.close()
	}
	if full {
		return ErrFull
	}
	return nil
}

// Get returns the session and extends its lifetime. Unknown, expired and
// unmounted sessions return SESSION_NOT_FOUND.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	if st.expiredLocked(s) {
		delete(st.sessions, id)
		go s.close()
		return nil, notFound(id)
	}
	s.expiresAt = st.now().Add(st.ttl)
	return s, nil
}

// Delete unmounts and forgets the session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return notFound(id)
	}
	s.close()
	return nil
}

// Cleanup unmounts expired sessions and returns how many it removed.
func (st *Store) Cleanup() int {
	st.mu.Lock()
	victims := st.evictLocked()
	st.mu.Unlock()

	for _, s := range victims {
		s.close()
	}
	return len(victims)
}

// Run calls Cleanup every interval until ctx ends.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Cleanup()
		}
	}
}

// IDs returns the live session ids, sorted.
func (st *Store) IDs() []string {
	st.mu.Lock()
	defer st.mu.Unlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of sessions, expired ones included until cleanup.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close unmounts every session.
func (st *Store) Close() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range all {
		s.close()
	}
}

func (st *Store) evictLocked() []*Session {
	var victims []*Session
	for id, s := range st.sessions {
		if st.expiredLocked(s) {
			delete(st.sessions, id)
			victims = append(victims, s)
		}
	}
	return victims
}

func (st *Store) expiredLocked(s *Session) bool {
	if !st.now().Before(s.expiresAt) {
		return true
	}
	if s.Mount == nil {
		return false
	}
	select {
	case <-s.Mount.Done():
		return true
	default:
		return false
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
}
