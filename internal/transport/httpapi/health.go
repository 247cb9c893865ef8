package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
)

const readyCheckTimeout = 2 * time.Second

// ReadyCheck is a named dependency check for /readyz.
type ReadyCheck struct {
	Name  string
	Check func(context.Context) error
}

type healthResponse struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

type HealthHandler struct {
	checks []ReadyCheck
	log    *slog.Logger
}

func NewHealthHandler(log *slog.Logger, checks ...ReadyCheck) *HealthHandler {
	return &HealthHandler{checks: checks, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(h.log, w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	failures := map[string]string{}
	for _, check := range h.checks {
		if check.Check == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		err := check.Check(ctx)
		cancel()
		if err != nil {
			name := check.Name
			if name == "" {
				name = "dependency"
			}
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		h.log.Warn("readiness check failed", slog.Any("failures", failures))
		writeJSON(h.log, w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Failures: failures})
		return
	}
	writeJSON(h.log, w, http.StatusOK, healthResponse{Status: "ready"})
}
