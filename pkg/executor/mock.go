// Package executor provides a scriptable retry.AttemptExecutor for
// tests and examples: a canned sequence of responses and/or errors
// played back one per call. Adapted from the teacher's
// pkg/providers/mock client, which plays back canned LLM responses the
// same way for testing retry.RetryChatCompletion.
package executor

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/coreclient/rpcretry/pkg/retry"
)

// Mock is a sequence-driven retry.AttemptExecutor: each call to Execute
// consumes the next scripted response or error, falling back to the
// last entry once the sequence is exhausted. Safe for concurrent use by
// many Drivers sharing one Policy.
type Mock struct {
	mu        sync.Mutex
	responses []*retry.Response
	errs      []error
	calls     []*http.Request
}

// NewMock builds a Mock with no scripted behavior; Execute will return
// a 200 response until ThenRespond/ThenFail are used to script one.
func NewMock() *Mock {
	return &Mock{}
}

// ThenRespond appends a scripted successful response.
func (m *Mock) ThenRespond(statusCode int, body []byte) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, &retry.Response{StatusCode: statusCode, Body: body})
	m.errs = append(m.errs, nil)
	return m
}

// ThenFail appends a scripted transport failure (no response at all).
func (m *Mock) ThenFail(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errs = append(m.errs, err)
	return m
}

// ThenStatus appends a scripted response carrying only a status code,
// the common case for driving retry-on-5xx/429 scenarios.
func (m *Mock) ThenStatus(statusCode int) *Mock {
	return m.ThenRespond(statusCode, nil)
}

// Execute implements retry.AttemptExecutor.
func (m *Mock) Execute(ctx context.Context, req *http.Request) (*retry.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	idx := len(m.calls) - 1
	if len(m.responses) == 0 {
		return &retry.Response{StatusCode: http.StatusOK}, nil
	}
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], m.errs[idx]
}

// CallCount reports how many times Execute has been invoked.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of every request Execute has observed, in order.
func (m *Mock) Calls() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*http.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// AlwaysStatus is a convenience constructor for the common "stub
// returns HTTP <code> for every call" scenario (spec §8 scenarios 1-4).
func AlwaysStatus(statusCode int) *Mock {
	return NewMock().ThenStatus(statusCode)
}

// errTransport is a stand-in transport failure for tests that need a
// non-nil error without a specific classification.
type errTransport struct{ msg string }

func (e errTransport) Error() string { return e.msg }

// NewTransportError builds a generic transport-layer error.
func NewTransportError(msg string) error {
	return errTransport{msg: fmt.Sprintf("transport error: %s", msg)}
}
