package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/hsn/internal/logging"
	"github.com/aretw0/hsn/pkg/domain"
)

// GlobalTopic carries table reload notices to subscribers without a session.
const GlobalTopic = ""

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // topic -> set of channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a buffered channel for topic. The returned func
// unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of topic without blocking.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "topic", topic)
		}
	}
}

// Subscribers returns the number of listeners on topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

type tableEvent struct {
	Type   domain.EventType `json:"type"`
	Source string           `json:"source"`
	Codes  int              `json:"codes"`
	Error  string           `json:"error,omitempty"`
}

type validateEvent struct {
	Type    domain.EventType `json:"type"`
	Results []domain.Result  `json:"results"`
}

// Hooks publishes table loads on GlobalTopic and session validations on the
// session's topic. Register them with hsn.WithLifecycleHooks.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTableLoad: func(_ context.Context, e *domain.LoadEvent) {
			ev := tableEvent{Type: domain.EventTableLoad, Source: e.Source, Codes: e.Codes}
			if e.Err != nil {
				ev.Error = e.Err.Error()
			}
			sm.publish(GlobalTopic, ev)
		},
		OnValidate: func(_ context.Context, e *domain.ValidateEvent) {
			if e.SessionID == "" {
				return
			}
			sm.publish(e.SessionID, validateEvent{Type: domain.EventValidate, Results: e.Results})
		},
	}
}

func (sm *StreamManager) publish(topic string, v any) {
	if sm.Subscribers(topic) == 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: encode failed", "err", err)
		return
	}
	sm.Broadcast(topic, string(b))
}
