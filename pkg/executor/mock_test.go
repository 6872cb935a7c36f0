package executor_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/coreclient/rpcretry/pkg/executor"
)

func newReq(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://example.invalid/resource", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestMock_DefaultsToOKWithNoScript(t *testing.T) {
	m := executor.NewMock()
	resp, err := m.Execute(context.Background(), newReq(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestMock_PlaysBackScriptInOrder(t *testing.T) {
	m := executor.NewMock().ThenStatus(500).ThenStatus(429).ThenStatus(200)

	for _, want := range []int{500, 429, 200} {
		resp, err := m.Execute(context.Background(), newReq(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != want {
			t.Fatalf("status = %d, want %d", resp.StatusCode, want)
		}
	}
}

func TestMock_ClampsToLastEntryOnceExhausted(t *testing.T) {
	m := executor.NewMock().ThenStatus(503)

	for i := 0; i < 5; i++ {
		resp, err := m.Execute(context.Background(), newReq(t))
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if resp.StatusCode != 503 {
			t.Fatalf("call %d: status = %d, want 503 (clamped)", i, resp.StatusCode)
		}
	}
	if m.CallCount() != 5 {
		t.Fatalf("CallCount = %d, want 5", m.CallCount())
	}
}

func TestMock_ThenFailReturnsScriptedError(t *testing.T) {
	sentinel := executor.NewTransportError("connection refused")
	m := executor.NewMock().ThenFail(sentinel)

	resp, err := m.Execute(context.Background(), newReq(t))
	if err == nil {
		t.Fatal("expected the scripted error")
	}
	if resp != nil {
		t.Fatalf("expected a nil response alongside a transport failure, got %+v", resp)
	}
}

func TestMock_ExecuteRespectsCancelledContext(t *testing.T) {
	m := executor.NewMock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Execute(ctx, newReq(t))
	if err == nil {
		t.Fatal("expected an error for an already-cancelled context")
	}
}

func TestMock_CallsRecordsEveryRequest(t *testing.T) {
	m := executor.NewMock().ThenStatus(200)
	req := newReq(t)
	req.Header.Set("X-Test", "marker")

	if _, err := m.Execute(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := m.Calls()
	if len(calls) != 1 {
		t.Fatalf("len(Calls()) = %d, want 1", len(calls))
	}
	if calls[0].Header.Get("X-Test") != "marker" {
		t.Fatal("expected the recorded request to retain headers set by the driver")
	}
}

func TestAlwaysStatus_RepeatsTheSameStatus(t *testing.T) {
	m := executor.AlwaysStatus(429)
	for i := 0; i < 3; i++ {
		resp, err := m.Execute(context.Background(), newReq(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != 429 {
			t.Fatalf("call %d: status = %d, want 429", i, resp.StatusCode)
		}
	}
}
