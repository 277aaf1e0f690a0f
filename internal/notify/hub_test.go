package notify

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	a := hub.Subscribe("a", 4)
	b := hub.Subscribe("b", 4)

	hub.Notify(ActionAddPallet, map[string]string{"id": "PLT-1"})

	for name, ch := range map[string]<-chan Event{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if ev.Action != ActionAddPallet {
				t.Errorf("%s: action = %s, want %s", name, ev.Action, ActionAddPallet)
			}
			if ev.Timestamp.IsZero() {
				t.Errorf("%s: event timestamp not set", name)
			}
		default:
			t.Errorf("%s: no event delivered", name)
		}
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ch := hub.Subscribe("slow", 1)

	// Second send must not block even though nobody is reading.
	hub.Notify(ActionAddPallet, nil)
	hub.Notify(ActionRemoveUnits, nil)

	ev := <-ch
	if ev.Action != ActionAddPallet {
		t.Errorf("kept event = %s, want the first one", ev.Action)
	}
	select {
	case ev := <-ch:
		t.Errorf("overflow event %s should have been dropped", ev.Action)
	default:
	}
}

func TestNopNotifier(t *testing.T) {
	// Must be safe to call with anything, including nil payloads.
	NopNotifier{}.Notify(ActionTest, nil)
}
