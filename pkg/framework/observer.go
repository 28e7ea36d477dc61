package framework

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// EventType classifies delivery events for filtering and routing.
type EventType string

const (
	EventSignalReceived   EventType = "signal_received"
	EventNodeEnter        EventType = "node_enter"
	EventNodeForward      EventType = "node_forward"
	EventNodeSuppress     EventType = "node_suppress"
	EventNodeError        EventType = "node_error"
	EventDeliveryComplete EventType = "delivery_complete"
)

// Event is a single observation from a signal delivery. Metadata carries
// node-specific details such as the order label a validator chose.
type Event struct {
	Type     EventType
	Pipeline string
	Node     string
	Signal   Signal
	Elapsed  time.Duration
	Error    error
	Metadata map[string]any
}

// Observer receives events during a delivery. Single-method design (like
// http.Handler) so adding new event types never breaks existing observers.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// MultiObserver fans out events to multiple observers.
type MultiObserver []Observer

func (m MultiObserver) OnEvent(e Event) {
	for _, obs := range m {
		if obs != nil {
			obs.OnEvent(e)
		}
	}
}

// LogObserver writes delivery events as structured slog lines.
type LogObserver struct {
	Logger *slog.Logger
}

func (o *LogObserver) OnEvent(e Event) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []slog.Attr{
		slog.String("event", string(e.Type)),
	}
	if e.Pipeline != "" {
		attrs = append(attrs, slog.String("pipeline", e.Pipeline))
	}
	if e.Node != "" {
		attrs = append(attrs, slog.String("node", e.Node))
	}
	if e.Signal != "" {
		attrs = append(attrs, slog.String("signal", string(e.Signal)))
	}
	if e.Elapsed > 0 {
		attrs = append(attrs, slog.Duration("elapsed", e.Elapsed))
	}
	for k, v := range e.Metadata {
		attrs = append(attrs, slog.Any(k, v))
	}

	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
		logger.LogAttrs(context.Background(), slog.LevelWarn, "signal", attrs...)
		return
	}
	logger.LogAttrs(context.Background(), slog.LevelDebug, "signal", attrs...)
}

// TraceCollector accumulates events in memory for post-delivery analysis.
// Safe for concurrent use.
type TraceCollector struct {
	mu     sync.Mutex
	events []Event
}

func (t *TraceCollector) OnEvent(e Event) {
	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()
}

// Events returns a copy of all collected events.
func (t *TraceCollector) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Reset clears collected events.
func (t *TraceCollector) Reset() {
	t.mu.Lock()
	t.events = nil
	t.mu.Unlock()
}

// EventsOfType returns only events matching the given type.
func (t *TraceCollector) EventsOfType(typ EventType) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Event
	for _, e := range t.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Notify sends e to obs when obs is non-nil.
func Notify(obs Observer, e Event) {
	if obs != nil {
		obs.OnEvent(e)
	}
}
