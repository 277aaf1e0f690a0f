// Package notify carries change notifications from the ledger to downstream
// subscribers (AMQP broadcast, spreadsheet sync). Delivery is fire-and-forget:
// a slow or failing subscriber never affects the mutation that produced the
// event.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Action tags, one per ledger mutation outcome.
const (
	ActionAddPallet     = "add_pallet"
	ActionRemovePallets = "remove_pallets"
	ActionRemoveUnits   = "remove_units"
	ActionDeletePallet  = "delete_pallet"
	ActionSyncAll       = "sync_all"
	ActionTest          = "test"
)

type Event struct {
	Action    string    `json:"action"`
	Payload   any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier is what the ledger sees. Implementations must not block.
type Notifier interface {
	Notify(action string, payload any)
}

// Hub fans events out to subscriber channels. Sends are non-blocking; when a
// subscriber's buffer is full the event is dropped with a warning.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan Event
	log  zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[string]chan Event),
		log:  log.With().Str("component", "notify").Logger(),
	}
}

// Subscribe registers a named subscriber and returns its event channel.
func (h *Hub) Subscribe(name string, buffer int) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Event, buffer)
	h.subs[name] = ch
	return ch
}

func (h *Hub) Notify(action string, payload any) {
	ev := Event{Action: action, Payload: payload, Timestamp: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for name, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.log.Warn().Str("subscriber", name).Str("action", action).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

// NopNotifier discards every event. Used in tests and when no sink is wired.
type NopNotifier struct{}

func (NopNotifier) Notify(string, any) {}
