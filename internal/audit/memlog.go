package audit

import (
	"context"
	"sync"
	"time"
)

type memLog struct {
	mu     sync.Mutex
	events []Event
}

// NewInMemoryLog backs tests and offline single-node runs.
func NewInMemoryLog() Recorder { return &memLog{} }

func (m *memLog) Append(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.Offset = int64(len(m.events) + 1)
	e.CreatedAt = time.Now().Unix()
	m.events = append(m.events, e)
	return nil
}

func (m *memLog) ListByKey(_ context.Context, key string) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Event{}
	for _, e := range m.events {
		if e.Key == key {
			out = append(out, e)
		}
	}
	return out, nil
}
