package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTableLoad EventType = "table_load"
	EventValidate  EventType = "validate"
	EventGuardrail EventType = "guardrail"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// LoadEvent describes a reference table (re)load.
type LoadEvent struct {
	EventBase
	Source   string        `json:"source"`
	Codes    int           `json:"codes"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// ValidateEvent describes one validator invocation.
type ValidateEvent struct {
	EventBase
	Inputs   int           `json:"inputs"`
	Results  []Result      `json:"results"`
	Duration time.Duration `json:"duration"`
}

// GuardrailEvent describes a guardrail verdict that blocked something.
type GuardrailEvent struct {
	EventBase
	Guard   string   `json:"guard"`
	Blocked []string `json:"blocked,omitempty"`
}

// LifecycleHooks defines callbacks for assistant observability.
type LifecycleHooks struct {
	OnTableLoad func(context.Context, *LoadEvent)
	OnValidate  func(context.Context, *ValidateEvent)
	OnGuardrail func(context.Context, *GuardrailEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTableLoad: chain(h.OnTableLoad, other.OnTableLoad),
		OnValidate:  chain(h.OnValidate, other.OnValidate),
		OnGuardrail: chain(h.OnGuardrail, other.OnGuardrail),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
