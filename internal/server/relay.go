package server

import (
	"sync"

	"github.com/matzehuels/floorview/pkg/floorplan/realtime"
)

// relayQueue buffers patches for one WebSocket client. Patches are full
// snapshots of a room, so a queued patch is overwritten in place by a newer
// one for the same room and every room still reaches the client with its
// latest state. Only when more than max distinct rooms are pending is the
// oldest one dropped.
type relayQueue struct {
	max   int
	ready chan struct{}

	mu      sync.Mutex
	order   []string
	pending map[string][]byte
}

func newRelayQueue(max int) *relayQueue {
	return &relayQueue{
		max:     max,
		ready:   make(chan struct{}, 1),
		pending: make(map[string][]byte),
	}
}

// push queues payload and reports whether it had to evict another room's
// patch. Malformed payloads are discarded; ok is false for them.
func (q *relayQueue) push(payload []byte) (evicted, ok bool) {
	p, err := realtime.Decode(payload)
	if err != nil {
		return false, false
	}

	q.mu.Lock()
	if _, queued := q.pending[p.RoomID]; !queued {
		if len(q.order) >= q.max {
			oldest := q.order[0]
			q.order = q.order[1:]
			delete(q.pending, oldest)
			evicted = true
		}
		q.order = append(q.order, p.RoomID)
	}
	q.pending[p.RoomID] = payload
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return evicted, true
}

// drain returns the queued payloads oldest room first and empties the queue.
func (q *relayQueue) drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([][]byte, len(q.order))
	for i, id := range q.order {
		out[i] = q.pending[id]
	}
	q.order = q.order[:0]
	clear(q.pending)
	return out
}
