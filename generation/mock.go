package generation

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a lightweight in-memory Client useful for tests and local
// development without provider credentials. Canned answers are keyed by
// question; unknown questions get a deterministic echo. A failure outcome
// can be forced to exercise fallback handling.
type MockClient struct {
	mu        sync.Mutex
	responses map[string]string
	fail      Outcome
	failN     int
	requests  []Request
}

// NewMockClient constructs an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{responses: make(map[string]string)}
}

// AddResponse registers a canned answer for a question.
func (m *MockClient) AddResponse(question, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[question] = answer
}

// FailWith forces the next n calls to produce the given failure outcome.
func (m *MockClient) FailWith(o Outcome, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = o
	m.failN = n
}

// Requests returns the requests seen so far, in call order.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Generate implements Client.
func (m *MockClient) Generate(_ context.Context, req Request) Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if m.failN > 0 {
		m.failN--
		status := 0
		if m.fail == OutcomeServiceError {
			status = 500
		}
		return failure(m.fail, status, fmt.Errorf("mock failure: %s", m.fail))
	}

	if answer, ok := m.responses[req.Question]; ok {
		return Response{Text: answer, Outcome: OutcomeSuccess}
	}
	return Response{Text: "Mock answer to: " + req.Question, Outcome: OutcomeSuccess}
}
