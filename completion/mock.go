package completion

import (
	"context"
	"sync"
)

// Mock is a lightweight in-memory Client useful for tests and examples. It
// serves queued responses first, then per-prompt canned responses, and can
// be switched into a failing mode to exercise stage fallbacks.
type Mock struct {
	mu        sync.Mutex
	queue     [][]byte
	responses map[string][]byte
	units     int
	err       error
	calls     int
}

// NewMock constructs an empty Mock reporting 0 usage units.
func NewMock() *Mock {
	return &Mock{responses: make(map[string][]byte)}
}

// Enqueue appends a JSON document served once, in FIFO order, before any
// per-prompt responses are considered.
func (m *Mock) Enqueue(jsonDoc string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, []byte(jsonDoc))
	return m
}

// AddResponse registers a canned JSON document for an exact user prompt.
func (m *Mock) AddResponse(userPrompt, jsonDoc string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[userPrompt] = []byte(jsonDoc)
	return m
}

// SetUnits sets the usage units reported with every successful result.
func (m *Mock) SetUnits(n int) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units = n
	return m
}

// Fail makes every subsequent Complete call return err. Pass nil to restore
// normal operation.
func (m *Mock) Fail(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns the number of Complete invocations observed.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Complete implements Client.
func (m *Mock) Complete(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}

	var doc []byte
	switch {
	case len(m.queue) > 0:
		doc = m.queue[0]
		m.queue = m.queue[1:]
	default:
		if canned, ok := m.responses[req.User]; ok {
			doc = canned
		} else {
			doc = []byte("{}")
		}
	}

	return &Result{JSON: doc, Units: m.units}, nil
}

// Info implements Client.
func (m *Mock) Info() Info { return Info{Provider: "mock", Model: "scripted"} }
