package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"salonbook/backend/internal/service/appointments"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Errors []fieldError `json:"errors"`
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to write JSON response", slog.Int("status", statusCode), slog.Any("err", err))
	}
}

func writeFieldErrors(log *slog.Logger, w http.ResponseWriter, errs []fieldError) {
	writeJSON(log, w, http.StatusBadRequest, errorResponse{Errors: errs})
}

// writeError renders a service error. Validation failures list one entry per
// violated rule under the offending field.
func writeError(log *slog.Logger, w http.ResponseWriter, err error) {
	var vErr *appointments.ValidationError
	switch {
	case errors.As(err, &vErr):
		errs := make([]fieldError, 0, len(vErr.Violations))
		for _, v := range vErr.Violations {
			errs = append(errs, fieldError{Field: v.Field, Message: v.Message})
		}
		statusCode := http.StatusBadRequest
		if errors.Is(err, appointments.ErrScheduleConflict) {
			statusCode = http.StatusConflict
		}
		log.Warn("invalid request", slog.Any("err", err))
		writeJSON(log, w, statusCode, errorResponse{Errors: errs})
	case errors.Is(err, appointments.ErrForbidden):
		writeJSON(log, w, http.StatusForbidden, errorResponse{Errors: []fieldError{{Message: "forbidden"}}})
	case errors.Is(err, appointments.ErrNotFound):
		writeJSON(log, w, http.StatusNotFound, errorResponse{Errors: []fieldError{{Message: "not found"}}})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("request timed out", slog.Any("err", err))
		writeJSON(log, w, http.StatusGatewayTimeout, errorResponse{Errors: []fieldError{{Message: "request timed out"}}})
	default:
		log.Error("request failed", slog.Any("err", err))
		writeJSON(log, w, http.StatusInternalServerError, errorResponse{Errors: []fieldError{{Message: "internal error"}}})
	}
}
