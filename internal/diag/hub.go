// Package diag implements mfs.Observer as a ring buffer of recent request
// events plus rolling per-minute and percentile statistics, for a
// read-only admin surface. It is adapted from the kind of in-memory log/
// stats hub the teacher wires into its HTTP admin UI, stripped of
// anything that doesn't apply to a single binary protocol server: no
// per-request HTTP status, no token redaction (there is nothing
// credential-shaped on this wire), no SSE streaming.
package diag

import (
	"sync"
	"time"

	"mfsd/internal/mfs"
)

// Event is one reported request/response exchange, timestamped in wall
// clock time for display. Client is already an opaque sequence number, not
// an address or token, so it needs no further redaction before exposure.
type Event struct {
	ID         uint64       `json:"id"`
	Time       time.Time    `json:"time"`
	Client     mfs.ClientID `json:"client"`
	Op         byte         `json:"op"`
	OpName     string       `json:"op_name"`
	ErrorCode  uint16       `json:"error_code,omitempty"`
	ReqBytes   int          `json:"req_bytes"`
	RespBytes  int          `json:"resp_bytes"`
	DurationMs uint64       `json:"duration_ms"`
}

// Hub is a fixed-capacity ring buffer of Events, safe for concurrent use.
// It implements mfs.Observer, so a *Hub can be passed directly as
// mfs.Config.Observer.
type Hub struct {
	mu      sync.Mutex
	ring    []Event
	nextPos int
	count   int
	nextID  uint64

	stats *statsHub
}

// DefaultCapacity is the ring buffer size used when NewHub is given a
// non-positive capacity.
const DefaultCapacity = 1024

// NewHub allocates a Hub with room for capacity events.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Hub{ring: make([]Event, capacity), stats: newStatsHub()}
}

// Observe records ev, satisfying mfs.Observer. It must not block; the ring
// insert and stats update are both O(1), each under its own mutex.
func (h *Hub) Observe(ev mfs.Event) {
	e := Event{
		Time:       time.Now(),
		Client:     ev.Client,
		Op:         ev.Op,
		OpName:     opName(ev.Op),
		ErrorCode:  ev.ErrorCode,
		ReqBytes:   ev.ReqBytes,
		RespBytes:  ev.RespBytes,
		DurationMs: ev.DurationMs,
	}

	h.mu.Lock()
	h.nextID++
	e.ID = h.nextID
	h.ring[h.nextPos] = e
	h.nextPos = (h.nextPos + 1) % len(h.ring)
	if h.count < len(h.ring) {
		h.count++
	}
	h.mu.Unlock()

	h.stats.add(ev)
}

// Events returns the most recent limit events, oldest first. limit <= 0
// returns every buffered event.
func (h *Hub) Events(limit int) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > h.count {
		limit = h.count
	}
	if limit == 0 {
		return nil
	}

	start := h.nextPos - h.count
	if start < 0 {
		start += len(h.ring)
	}
	start = (start + (h.count - limit)) % len(h.ring)

	out := make([]Event, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, h.ring[(start+i)%len(h.ring)])
	}
	return out
}

// Stats returns the current statistics snapshot.
func (h *Hub) Stats() StatsSnapshot {
	return h.stats.snapshot()
}

func opName(op byte) string {
	switch op {
	case mfs.OpNOOP:
		return "NOOP"
	case mfs.OpREAD:
		return "READ"
	case mfs.OpWRITE:
		return "WRITE"
	case mfs.OpLS:
		return "LS"
	case mfs.OpERROR:
		return "ERROR"
	default:
		switch {
		case op == mfs.ResponseOf(mfs.OpNOOP):
			return "NOOP_RESP"
		case op == mfs.ResponseOf(mfs.OpREAD):
			return "READ_RESP"
		case op == mfs.ResponseOf(mfs.OpWRITE):
			return "WRITE_RESP"
		case op == mfs.ResponseOf(mfs.OpLS):
			return "LS_RESP"
		case op == mfs.ResponseOf(mfs.OpERROR):
			return "ERROR_RESP"
		default:
			return "UNKNOWN"
		}
	}
}
