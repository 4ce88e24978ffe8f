package status

import (
	"context"
	"sync"
)

const DefaultMaxLines = 500

// Memory is a process-local Store guarded by an RWMutex.
type Memory struct {
	mu       sync.RWMutex
	snap     Snapshot
	lines    []string
	start    int
	maxLines int
}

func NewMemory(maxLines int) *Memory {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Memory{maxLines: maxLines}
}

func (m *Memory) Save(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	m.snap = s
	m.mu.Unlock()
	return nil
}

func (m *Memory) Load(_ context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, nil
}

func (m *Memory) AppendLog(_ context.Context, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.lines) < m.maxLines {
		m.lines = append(m.lines, line)
		return nil
	}
	m.lines[m.start] = line
	m.start = (m.start + 1) % m.maxLines
	return nil
}

func (m *Memory) Tail(_ context.Context, n int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := len(m.lines)
	if n <= 0 || n > total {
		n = total
	}
	out := make([]string, 0, n)
	for i := total - n; i < total; i++ {
		out = append(out, m.lines[(m.start+i)%total])
	}
	return out, nil
}
