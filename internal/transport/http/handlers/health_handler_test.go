package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandlerReportsDependencies(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": pingerFunc(func(context.Context) error { return nil }),
		"redis":    pingerFunc(func(context.Context) error { return errStub }),
		"push":     nil,
	})

	rr := httptest.NewRecorder()
	h.Handle(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}

	var payload struct {
		OK           bool              `json:"ok"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK {
		t.Fatalf("expected ok=true")
	}
	want := map[string]string{"postgres": "up", "redis": "down", "push": "disabled"}
	for name, state := range want {
		if payload.Dependencies[name] != state {
			t.Fatalf("dependency %s: got %q want %q", name, payload.Dependencies[name], state)
		}
	}
}
