package worker

import (
	"context"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
)

type mockCommitter struct {
	mu        sync.Mutex
	committed []int64
	commitErr error
}

func (m *mockCommitter) Commit(ctx context.Context, msg kafkago.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msg.Offset)
	return m.commitErr
}

func (m *mockCommitter) offsets() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.committed...)
}
