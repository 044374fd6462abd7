package shell

import (
	"time"

	"github.com/bryanchriswhite/WebDesk/internal/logger"
	"github.com/bryanchriswhite/WebDesk/internal/window"
)

// EventType names a change to the shell state
type EventType string

const (
	EventOpened    EventType = "opened"
	EventClosed    EventType = "closed"
	EventFocused   EventType = "focused"
	EventMoved     EventType = "moved"
	EventPhase     EventType = "phase"
	EventUnmounted EventType = "unmounted"
	EventViewport  EventType = "viewport"
	EventControl   EventType = "control"
	EventOverlay   EventType = "overlay"
	EventCloseAll  EventType = "close_all"
)

// Event is broadcast to subscribers after every state change
type Event struct {
	Type     EventType     `json:"type" yaml:"type"`
	Session  string        `json:"session" yaml:"session"`
	Version  uint64        `json:"version" yaml:"version"`
	Window   window.ID     `json:"window,omitempty" yaml:"window,omitempty"`
	Phase    string        `json:"phase,omitempty" yaml:"phase,omitempty"`
	Position *window.Point `json:"position,omitempty" yaml:"position,omitempty"`
	Detail   string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	Time     time.Time     `json:"time" yaml:"time"`
}

const subscriberBuffer = 64

// Subscribe returns a channel that receives every event from now on
func (s *Shell) Subscribe() chan Event {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	s.listeners = append(s.listeners, ch)
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe
func (s *Shell) Unsubscribe(ch chan Event) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	for i, listener := range s.listeners {
		if listener == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

// notifyListeners fans an event out without ever blocking the shell
func (s *Shell) notifyListeners(ev Event) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()

	for _, ch := range s.listeners {
		select {
		case ch <- ev:
		default:
			logger.WithComponent("shell").Warn().
				Str("event", string(ev.Type)).
				Msg("Subscriber too slow, dropping event")
		}
	}
}

// emit queues an event. Called with s.mu held; unlock delivers it.
func (s *Shell) emit(typ EventType, id window.ID) *Event {
	s.version++
	s.pending = append(s.pending, Event{
		Type:    typ,
		Session: s.session,
		Version: s.version,
		Window:  id,
		Time:    time.Now(),
	})
	return &s.pending[len(s.pending)-1]
}

func (s *Shell) lock() {
	s.mu.Lock()
}

// unlock releases the shell and then delivers the events queued while it
// was held. The delivery lock is taken first, so the next writer's batch
// waits for this one and subscribers see strictly increasing versions.
func (s *Shell) unlock() {
	events := s.pending
	s.pending = nil
	if len(events) == 0 {
		s.mu.Unlock()
		return
	}

	s.deliverMu.Lock()
	s.mu.Unlock()
	defer s.deliverMu.Unlock()

	for _, ev := range events {
		s.notifyListeners(ev)
	}
}
