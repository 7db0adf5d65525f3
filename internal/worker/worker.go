// Package worker follows 3D job lifecycle events from the bus and keeps the latest state of every task
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"

	"github.com/UnendingLoop/ImageLab/internal/kafka"
	"github.com/samber/lo"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"
)

// Committer - то, что умеет wbf-консьюмер
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Worker struct {
	queue    <-chan kafkago.Message
	consumer Committer

	mu   sync.Mutex
	jobs map[string]kafka.JobEvent
}

func NewWorkerInstance(q <-chan kafkago.Message, cons Committer) *Worker {
	return &Worker{queue: q, consumer: cons, jobs: make(map[string]kafka.JobEvent)}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			// битое сообщение не чинится повторным чтением - коммитим в любом случае
			if err := w.handle(msg); err != nil {
				log.Printf("Skipping job event at offset %d: %v", msg.Offset, err)
			}
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) handle(msg kafkago.Message) error {
	var ev kafka.JobEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("failed to decode job event: %w", err)
	}
	if ev.TaskID == "" {
		ev.TaskID = string(msg.Key)
	}
	if ev.TaskID == "" {
		return fmt.Errorf("job event %q has no task id", ev.Type)
	}

	w.mu.Lock()
	prev, seen := w.jobs[ev.TaskID]
	// события одной задачи идут в одну партицию, но старое не должно затирать финальное
	if !seen || !isFinal(prev) || isFinal(ev) {
		w.jobs[ev.TaskID] = ev
	}
	w.mu.Unlock()

	logger := zlog.Logger.With().
		Str("task_id", ev.TaskID).
		Str("vendor", ev.Vendor).
		Str("state", string(ev.State)).
		Int("attempts", ev.Attempts).
		Logger()

	switch ev.Type {
	case kafka.EventSucceeded:
		logger.Info().Str("model_url", ev.ModelURL).Msg("3D job succeeded")
	case kafka.EventFailed:
		logger.Warn().Str("error", ev.Error).Msg("3D job failed")
	case kafka.EventPending:
		logger.Warn().Msg("3D job left pending after polling budget, follow up by task id")
	default:
		logger.Debug().Msgf("3D job %s", ev.Type)
	}
	return nil
}

func isFinal(ev kafka.JobEvent) bool {
	return ev.Type == kafka.EventSucceeded || ev.Type == kafka.EventFailed
}

// Unresolved returns tasks whose latest known event is not final, ordered by task id.
func (w *Worker) Unresolved() []kafka.JobEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	open := lo.Filter(lo.Values(w.jobs), func(ev kafka.JobEvent, _ int) bool {
		return !isFinal(ev)
	})
	slices.SortFunc(open, func(a, b kafka.JobEvent) int {
		return strings.Compare(a.TaskID, b.TaskID)
	})
	return open
}

// Latest - последнее событие по задаче
func (w *Worker) Latest(taskID string) (kafka.JobEvent, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ev, ok := w.jobs[taskID]
	return ev, ok
}
