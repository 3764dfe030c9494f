package app

import (
	"log/slog"
	"sync"
)

// SSEEvent carries a notification intent to connected dashboards.
// Delivery beyond the event stream (mail, push) is out of scope.
type SSEEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type SSEHub struct {
	log *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[chan SSEEvent]struct{} // topic -> set(ch)
}

func NewSSEHub(logger *slog.Logger) *SSEHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &SSEHub{
		log:  logger,
		subs: map[string]map[chan SSEEvent]struct{}{},
	}
}

func (h *SSEHub) Subscribe(topics []string, buf int) (<-chan SSEEvent, func()) {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan SSEEvent, buf)

	h.mu.Lock()
	for _, t := range topics {
		if h.subs[t] == nil {
			h.subs[t] = map[chan SSEEvent]struct{}{}
		}
		h.subs[t][ch] = struct{}{}
	}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		for _, t := range topics {
			if set, ok := h.subs[t]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(h.subs, t)
				}
			}
		}
		h.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

func (h *SSEHub) Broadcast(topic string, ev SSEEvent) {
	// Sends are non-blocking, so the lock is held only briefly; holding
	// it through the loop keeps cancel from closing a channel mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[topic] {
		select {
		case ch <- ev:
		default:
			// drop if slow consumer
		}
	}
}

/* ---- topic helpers ---- */

func TopicUser(uid string) string   { return "user:" + uid }
func TopicRole(role string) string  { return "role:" + role }
func TopicPiecesGlobal() string     { return "pieces:global" }

func (h *SSEHub) BroadcastUser(uid string, ev SSEEvent) { h.Broadcast(TopicUser(uid), ev) }
func (h *SSEHub) BroadcastRole(role string, ev SSEEvent) { h.Broadcast(TopicRole(role), ev) }
func (h *SSEHub) BroadcastPieces(ev SSEEvent)            { h.Broadcast(TopicPiecesGlobal(), ev) }
