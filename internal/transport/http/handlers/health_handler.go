package handlers

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/errors"
)

// Pinger reports whether a backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Handle always answers 200 while the process serves; dependency state is
// reported per check so a degraded start stays visible.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if check == nil {
			deps[name] = "disabled"
			continue
		}
		if err := check.Ping(ctx); err != nil {
			deps[name] = "down"
			continue
		}
		deps[name] = "up"
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK           bool              `json:"ok"`
		Dependencies map[string]string `json:"dependencies,omitempty"`
	}{OK: true, Dependencies: deps})
}
