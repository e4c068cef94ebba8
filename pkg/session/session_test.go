package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
	"github.com/matzehuels/floorview/pkg/floorplan/viewer"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newStore(ttl time.Duration, max int) (*Store, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	st := NewStore(ttl, max)
	st.now = c.now
	return st, c
}

func mount(t *testing.T) *Session {
	t.Helper()
	f := &floorplan.Floor{ID: "ground", Blocks: []floorplan.RoomBlock{
		{ID: "kitchen", Rect: geom.Rect{Width: 100, Height: 50}},
	}}
	m, err := viewer.Open(context.Background(), f, viewer.MountConfig{Viewport: geom.Size{Width: 800, Height: 600}})
	if err != nil {
		t.Fatal(err)
	}
	return New(f.ID, m, &viewer.Resizer{}, &viewer.Intents{})
}

func TestStoreAddGetDelete(t *testing.T) {
	st, _ := newStore(time.Minute, 0)
	s := mount(t)

	if err := st.Add(s); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	got, err := st.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if err := st.Delete(s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	select {
	case <-s.Mount.Done():
	default:
		t.Error("Delete did not unmount the viewer")
	}
	if _, err := st.Get(s.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get() after Delete error = %v", err)
	}
	if err := st.Delete(s.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestStoreExpiry(t *testing.T) {
	st, clk := newStore(time.Minute, 0)
	s := mount(t)
	_ = st.Add(s)

	clk.advance(40 * time.Second)
	if _, err := st.Get(s.ID); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	// Get slid the deadline, so 40s more is still inside the window.
	clk.advance(40 * time.Second)
	if _, err := st.Get(s.ID); err != nil {
		t.Fatalf("Get() after sliding error = %v", err)
	}

	clk.advance(2 * time.Minute)
	if n := st.Cleanup(); n != 1 {
		t.Errorf("Cleanup() = %d, want 1", n)
	}
	select {
	case <-s.Mount.Done():
	case <-time.After(time.Second):
		t.Error("expired session still mounted")
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}

func TestStoreCapacity(t *testing.T) {
	st, clk := newStore(time.Minute, 1)
	first := mount(t)
	second := mount(t)
	defer second.Mount.Close()

	_ = st.Add(first)
	if err := st.Add(second); err != ErrFull {
		t.Fatalf("Add() over capacity error = %v, want ErrFull", err)
	}

	clk.advance(2 * time.Minute)
	if err := st.Add(second); err != nil {
		t.Fatalf("Add() after expiry error = %v", err)
	}
	if ids := st.IDs(); len(ids) != 1 || ids[0] != second.ID {
		t.Errorf("IDs() = %v", ids)
	}
}

func TestStoreDropsUnmountedSessions(t *testing.T) {
	st, _ := newStore(time.Minute, 0)
	s := mount(t)
	_ = st.Add(s)
	_ = s.Mount.Close()

	if _, err := st.Get(s.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get() of unmounted session error = %v", err)
	}
}

func TestStoreClose(t *testing.T) {
	st, _ := newStore(time.Minute, 0)
	a, b := mount(t), mount(t)
	_ = st.Add(a)
	_ = st.Add(b)

	st.Close()
	for _, s := range []*Session{a, b} {
		select {
		case <-s.Mount.Done():
		default:
			t.Errorf("session %s still mounted", s.ID)
		}
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d", st.Len())
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a := New("ground", nil, nil, nil)
	b := New("ground", nil, nil, nil)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids %q and %q", a.ID, b.ID)
	}
}
