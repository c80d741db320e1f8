package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Job handles one task type. Name doubles as the routing key.
type Job interface {
	Name() string
	Handle(ctx context.Context, payload json.RawMessage) error
}

// Task is the wire form of one queued unit of work.
type Task struct {
	ID        string          `json:"id"`
	Job       string          `json:"job"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
}

// Publisher enqueues tasks for background processing.
type Publisher interface {
	Enqueue(ctx context.Context, job string, payload interface{}) error
}

// ParsePayload decodes a task payload into T.
func ParsePayload[T any](payload json.RawMessage) (*T, error) {
	var v T
	if len(payload) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &v, nil
}
