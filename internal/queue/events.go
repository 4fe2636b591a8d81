package queue

import (
	"context"
	"encoding/json"
	"time"
)

// EventType names the queue lifecycle events surfaced for diagnostics.
// No business logic depends on consuming them.
type EventType string

const (
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventError     EventType = "error"
)

// Event is published on the queue's Redis channel after each terminal
// job outcome and on queue-level errors.
type Event struct {
	Type    EventType `json:"type"`
	JobID   string    `json:"jobId,omitempty"`
	StoryID string    `json:"storyId,omitempty"`
	Attempt int       `json:"attempt,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

func (q *Queue) publishEvent(ctx context.Context, ev Event) {
	ev.At = time.Now().UTC()
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	// Best effort: observability must not fail the job path.
	if err := q.rdb.Publish(ctx, eventsChannel, payload).Err(); err != nil {
		q.log.Warn("failed to publish queue event", "type", ev.Type, "error", err)
	}
}
