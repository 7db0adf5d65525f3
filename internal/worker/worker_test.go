package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/kafka"
	"github.com/UnendingLoop/ImageLab/internal/model"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func eventMsg(t *testing.T, offset int64, ev kafka.JobEvent) kafkago.Message {
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafkago.Message{Offset: offset, Key: []byte(ev.TaskID), Value: body}
}

func TestWorker_handle(t *testing.T) {
	tests := []struct {
		name    string
		msg     kafkago.Message
		wantErr bool
		wantID  string
	}{
		{
			name:   "created",
			msg:    kafkago.Message{Value: []byte(`{"type":"created","vendor":"Meshy","taskId":"t1","state":"CREATED"}`)},
			wantID: "t1",
		},
		{
			name:   "task id from key",
			msg:    kafkago.Message{Key: []byte("t2"), Value: []byte(`{"type":"pending","state":"EXHAUSTED"}`)},
			wantID: "t2",
		},
		{
			name:    "broken json",
			msg:     kafkago.Message{Value: []byte(`{`)},
			wantErr: true,
		},
		{
			name:    "no task id",
			msg:     kafkago.Message{Value: []byte(`{"type":"created"}`)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorkerInstance(nil, &mockCommitter{})
			err := w.handle(tt.msg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, ok := w.Latest(tt.wantID)
			require.True(t, ok)
		})
	}
}

func TestWorker_FinalStateWins(t *testing.T) {
	w := NewWorkerInstance(nil, &mockCommitter{})

	require.NoError(t, w.handle(eventMsg(t, 0, kafka.JobEvent{Type: kafka.EventSucceeded, TaskID: "t1", State: model.StateSucceeded})))
	// запоздалое событие создания не откатывает задачу назад
	require.NoError(t, w.handle(eventMsg(t, 1, kafka.JobEvent{Type: kafka.EventCreated, TaskID: "t1", State: model.StateCreated})))

	ev, ok := w.Latest("t1")
	require.True(t, ok)
	require.Equal(t, kafka.EventSucceeded, ev.Type)
	require.Empty(t, w.Unresolved())
}

func TestWorker_StartWorker(t *testing.T) {
	queue := make(chan kafkago.Message, 4)
	cons := &mockCommitter{commitErr: errors.New("rebalance in progress")}
	w := NewWorkerInstance(queue, cons)

	queue <- eventMsg(t, 10, kafka.JobEvent{Type: kafka.EventCreated, TaskID: "b", State: model.StateCreated})
	queue <- eventMsg(t, 11, kafka.JobEvent{Type: kafka.EventPending, TaskID: "a", State: model.StateExhausted, Attempts: 60})
	queue <- kafkago.Message{Offset: 12, Value: []byte("garbage")}
	queue <- eventMsg(t, 13, kafka.JobEvent{Type: kafka.EventFailed, TaskID: "c", State: model.StateFailed, Error: "boom"})
	close(queue)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	w.StartWorker(ctx)

	// ошибка коммита и мусорное сообщение не останавливают цикл
	require.Equal(t, []int64{10, 11, 12, 13}, cons.offsets())

	open := w.Unresolved()
	require.Len(t, open, 2)
	require.Equal(t, "a", open[0].TaskID)
	require.Equal(t, 60, open[0].Attempts)
	require.Equal(t, "b", open[1].TaskID)
}

func TestWorker_StopsOnContext(t *testing.T) {
	w := NewWorkerInstance(make(chan kafkago.Message), &mockCommitter{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.StartWorker(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}
