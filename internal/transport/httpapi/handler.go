package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/requestid"
	"salonbook/backend/internal/scheduling"
)

type bookingService interface {
	Availability(ctx context.Context, staffID string, candidate time.Time) (scheduling.Availability, error)
	Candidate(year, month, day int, clock string) (time.Time, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListStaff(ctx context.Context) ([]domain.User, error)
}

type serviceJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Duration int             `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

type staffJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type availabilityResponse struct {
	AvailableServices []serviceJSON `json:"availableServices"`
	BlockedHours      []time.Time   `json:"blockedHours"`
}

// availabilityQuery is the calendar cell a client clicked.
type availabilityQuery struct {
	StaffID string `query:"staff_id" validate:"required,max=128"`
	Year    int    `query:"year" validate:"required,min=1,max=9999"`
	Month   int    `query:"month" validate:"required,min=1,max=12"`
	Day     int    `query:"day" validate:"required,min=1,max=31"`
	Hour    string `query:"hour" validate:"required,len=5"`
}

type CalendarHandler struct {
	svc      bookingService
	validate *validator.Validate
	log      *slog.Logger
}

func NewCalendarHandler(svc bookingService, log *slog.Logger) *CalendarHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return &CalendarHandler{
		svc:      svc,
		validate: v,
		log:      log.With(slog.String("component", "http.calendar")),
	}
}

func (h *CalendarHandler) requestLogger(r *http.Request, handler string) *slog.Logger {
	return h.log.With(
		slog.String("handler", handler),
		slog.String("request_id", requestid.FromContext(r.Context())),
	)
}

func (h *CalendarHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := h.requestLogger(r, "Availability")

	q, errs := parseAvailabilityQuery(r)
	if len(errs) == 0 {
		errs = h.check(q)
	}
	if len(errs) > 0 {
		log.Warn("invalid request", slog.Any("errors", errs))
		writeFieldErrors(log, w, errs)
		return
	}

	candidate, err := h.svc.Candidate(q.Year, q.Month, q.Day, q.Hour)
	if err != nil {
		writeError(log, w, err)
		return
	}
	av, err := h.svc.Availability(r.Context(), q.StaffID, candidate)
	if err != nil {
		writeError(log, w, err)
		return
	}

	out := availabilityResponse{
		AvailableServices: make([]serviceJSON, 0, len(av.Bookable)),
		BlockedHours:      make([]time.Time, 0, len(av.BlockedSlots)),
	}
	for _, svc := range av.Bookable {
		out.AvailableServices = append(out.AvailableServices, toServiceJSON(svc))
	}
	out.BlockedHours = append(out.BlockedHours, av.BlockedSlots...)
	writeJSON(log, w, http.StatusOK, out)
}

func (h *CalendarHandler) Services(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := h.requestLogger(r, "Services")

	services, err := h.svc.ListServices(r.Context())
	if err != nil {
		writeError(log, w, err)
		return
	}
	out := make([]serviceJSON, 0, len(services))
	for _, svc := range services {
		out = append(out, toServiceJSON(svc))
	}
	writeJSON(log, w, http.StatusOK, out)
}

func (h *CalendarHandler) Staff(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := h.requestLogger(r, "Staff")

	users, err := h.svc.ListStaff(r.Context())
	if err != nil {
		writeError(log, w, err)
		return
	}
	out := make([]staffJSON, 0, len(users))
	for _, u := range users {
		out = append(out, staffJSON{ID: u.ID, Name: u.DisplayName()})
	}
	writeJSON(log, w, http.StatusOK, out)
}

func (h *CalendarHandler) check(q availabilityQuery) []fieldError {
	err := h.validate.Struct(q)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []fieldError{{Message: err.Error()}}
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fe.Field(), Message: queryMessage(fe)})
	}
	return out
}

func queryMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must be in HH:mm format"
	}
	return "is invalid"
}

func parseAvailabilityQuery(r *http.Request) (availabilityQuery, []fieldError) {
	values := r.URL.Query()
	q := availabilityQuery{
		StaffID: strings.TrimSpace(values.Get("staff_id")),
		Hour:    strings.TrimSpace(values.Get("hour")),
	}
	var errs []fieldError
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"year", &q.Year},
		{"month", &q.Month},
		{"day", &q.Day},
	} {
		raw := strings.TrimSpace(values.Get(f.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fieldError{Field: f.name, Message: "must be a number"})
			continue
		}
		*f.dst = n
	}
	return q, errs
}

func toServiceJSON(s domain.Service) serviceJSON {
	return serviceJSON{
		ID:       s.ID.String(),
		Name:     s.Name,
		Duration: s.DurationMinutes,
		Price:    s.Price,
	}
}
