package viewer

import "sync"

// Router receives navigation intents.
type Router interface {
	OpenRoom(roomID string)
	OpenEditor(floorID string)
}

// NopRouter discards intents.
type NopRouter struct{}

func (NopRouter) OpenRoom(string)   {}
func (NopRouter) OpenEditor(string) {}

// IntentKind names a navigation target.
type IntentKind string

const (
	IntentRoom   IntentKind = "room"
	IntentEditor IntentKind = "editor"
)

// Intent is a recorded navigation request.
type Intent struct {
	Kind   IntentKind `json:"kind"`
	Target string     `json:"target"`
}

// Intents is a Router that queues intents for a consumer on another
// goroutine. The queue keeps the most recent Max intents.
type Intents struct {
	Max int

	mu    sync.Mutex
	items []Intent
}

func (q *Intents) OpenRoom(roomID string)    { q.push(Intent{Kind: IntentRoom, Target: roomID}) }
func (q *Intents) OpenEditor(floorID string) { q.push(Intent{Kind: IntentEditor, Target: floorID}) }

func (q *Intents) push(in Intent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, in)
	if q.Max > 0 && len(q.items) > q.Max {
		q.items = q.items[len(q.items)-q.Max:]
	}
}

// Drain returns and clears the queued intents.
func (q *Intents) Drain() []Intent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
