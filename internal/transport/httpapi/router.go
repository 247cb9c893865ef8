// Package httpapi serves the booking calendar's read endpoints and the health probes
// over HTTP. Writes go through the gRPC API.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func NewRouter(svc bookingService, log *slog.Logger, checks ...ReadyCheck) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	calendar := NewCalendarHandler(svc, log)
	health := NewHealthHandler(log, checks...)

	router := httprouter.New()
	router.GET("/healthz", health.Health)
	router.GET("/readyz", health.Ready)
	router.GET("/api/v1/availability", calendar.Availability)
	router.GET("/api/v1/services", calendar.Services)
	router.GET("/api/v1/staff", calendar.Staff)

	return Chain(router, WithRequestID(), WithAccessLog(log))
}
