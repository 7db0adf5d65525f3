package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/wb-go/wbf/retry"
)

// Типы событий жизненного цикла 3D-задачи
const (
	EventCreated   = "created"
	EventSucceeded = "succeeded"
	EventFailed    = "failed"
	EventPending   = "pending"
)

// JobEvent - сообщение в топик; ключ сообщения - id задачи у вендора
type JobEvent struct {
	Type         string         `json:"type"`
	Vendor       string         `json:"vendor"`
	TaskID       string         `json:"taskId"`
	State        model.JobState `json:"state"`
	Attempts     int            `json:"attempts"`
	ModelURL     string         `json:"modelUrl,omitempty"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	Error        string         `json:"error,omitempty"`
	At           time.Time      `json:"at"`
}

// Sender - то, что умеет wbf-продюсер
type Sender interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

var publishStrategy = retry.Strategy{
	Attempts: 3,
	Delay:    time.Second,
	Backoff:  2,
}

type EventPublisher struct {
	sender Sender
}

func NewEventPublisher(s Sender) *EventPublisher {
	return &EventPublisher{sender: s}
}

func (p *EventPublisher) Publish(ctx context.Context, ev JobEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal job event: %w", err)
	}

	if err := p.sender.SendWithRetry(ctx, publishStrategy, []byte(ev.TaskID), body); err != nil {
		return fmt.Errorf("failed to publish %s event for task %q: %w", ev.Type, ev.TaskID, err)
	}
	return nil
}

// NoopPublisher - ЗАГЛУШКА, когда KAFKA_BROKER не задан
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, JobEvent) error {
	return nil
}
