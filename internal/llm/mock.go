package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockResponse is one canned answer.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider answers from canned responses. Responses queued for a
// request's Purpose are used first, then a standing answer for that
// purpose, then the shared FIFO queue.
type MockProvider struct {
	mu        sync.Mutex
	queue     []MockResponse
	byPurpose map[string][]MockResponse
	always    map[string]MockResponse

	// Calls records every request in arrival order.
	Calls []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{
		queue:     responses,
		byPurpose: map[string][]MockResponse{},
		always:    map[string]MockResponse{},
	}
}

// On queues responses for one purpose.
func (m *MockProvider) On(purpose string, responses ...MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPurpose[purpose] = append(m.byPurpose[purpose], responses...)
	return m
}

// Always answers every request for purpose with resp once its queue is empty.
func (m *MockProvider) Always(purpose string, resp MockResponse) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.always[purpose] = resp
	return m
}

func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	resp, ok := m.next(req.Purpose)
	if !ok {
		return nil, &Error{
			Reason:   ReasonUnavailable,
			Provider: "mock",
			Err:      fmt.Errorf("no canned response for %q", req.Purpose),
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) next(purpose string) (MockResponse, bool) {
	if q := m.byPurpose[purpose]; len(q) > 0 {
		m.byPurpose[purpose] = q[1:]
		return q[0], true
	}
	if resp, ok := m.always[purpose]; ok {
		return resp, true
	}
	if len(m.queue) > 0 {
		resp := m.queue[0]
		m.queue = m.queue[1:]
		return resp, true
	}
	return MockResponse{}, false
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CallsFor returns the recorded requests tagged with purpose.
func (m *MockProvider) CallsFor(purpose string) []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Request
	for _, c := range m.Calls {
		if c.Purpose == purpose {
			out = append(out, c)
		}
	}
	return out
}
