// Package events distributes client-side progress events to interested
// listeners (the watch printer, the logger).
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one progress notification.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ProjectID string    `json:"project_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Event types emitted by the client.
const (
	TypeActionInvoked      = "action_invoked"
	TypeActionCompleted    = "action_completed"
	TypeStageChanged       = "stage_changed"
	TypeQuestionAnswered   = "question_answered"
	TypeQuestionSkipped    = "question_skipped"
	TypeSessionRegenerated = "session_regenerated"
	TypeSessionFinalized   = "session_finalized"
	TypeError              = "error"
)

// Bus fans events out to subscribers. Slow subscribers are skipped rather
// than blocking the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string]chan Event)}
}

// Subscribe registers a named listener.
func (b *Bus) Subscribe(name string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 100)
	b.subscribers[name] = ch
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, exists := b.subscribers[name]; exists {
		delete(b.subscribers, name)
		close(ch)
	}
}

// Publish broadcasts one event to every subscriber.
func (b *Bus) Publish(eventType, projectID string, data any) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ProjectID: projectID,
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.RLock()
	subscribers := make([]chan Event, 0, len(b.subscribers))
	for _, ch := range b.subscribers {
		subscribers = append(subscribers, ch)
	}
	b.mu.RUnlock()

	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber buffer full; drop rather than block.
		}
	}
}
