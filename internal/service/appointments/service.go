package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/scheduling"
	"salonbook/backend/internal/store"
)

const maxIdempotencyKeyLen = 256

// Confirmer delivers the booking confirmation. Failures do not undo the booking.
type Confirmer interface {
	AppointmentBooked(ctx context.Context, appt domain.Appointment) error
}

type Deps struct {
	Appointments store.AppointmentRepository
	Catalog      store.ServiceCatalog
	Directory    store.UserDirectory
	Confirmer    Confirmer
	Hours        scheduling.BusinessHours
	Now          func() time.Time
	Log          *slog.Logger
}

type Service struct {
	appts     store.AppointmentRepository
	catalog   store.ServiceCatalog
	directory store.UserDirectory
	confirmer Confirmer
	hours     scheduling.BusinessHours
	now       func() time.Time
	log       *slog.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		appts:     d.Appointments,
		catalog:   d.Catalog,
		directory: d.Directory,
		confirmer: d.Confirmer,
		hours:     d.Hours,
		now:       d.Now,
		log:       d.Log,
	}
	if s.hours == (scheduling.BusinessHours{}) {
		s.hours = scheduling.DefaultBusinessHours()
	}
	if s.hours.Location == nil {
		s.hours.Location = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.confirmer == nil {
		s.confirmer = noConfirmer{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With(slog.String("component", "appointments"))
	return s
}

type noConfirmer struct{}

func (noConfirmer) AppointmentBooked(context.Context, domain.Appointment) error { return nil }

// Hours returns the business hours the service validates against.
func (s *Service) Hours() scheduling.BusinessHours {
	return s.hours
}

type CreateInput struct {
	ClientID  string
	StaffID   string
	ServiceID uuid.UUID
	// StartTime is nil until the client picks a slot.
	StartTime      *time.Time
	IdempotencyKey string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return domain.Appointment{}, invalidInput("client_id", "required", "client is required")
	}
	if err := s.checkClient(ctx, clientID); err != nil {
		return domain.Appointment{}, err
	}

	svc, err := s.resolveService(ctx, in.ServiceID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if in.StartTime == nil || in.StartTime.IsZero() {
		return domain.Appointment{}, validationError(ErrMissingSchedule, "start_time", "required", "please choose a date and time")
	}
	staffID := strings.TrimSpace(in.StaffID)
	if err := s.checkStaff(ctx, staffID); err != nil {
		return domain.Appointment{}, err
	}

	start := in.StartTime.In(s.hours.Location)
	if err := s.checkSchedule(start, svc.Duration()); err != nil {
		return domain.Appointment{}, err
	}

	appt := domain.Appointment{
		ClientID:  clientID,
		StaffID:   staffID,
		ServiceID: &svc.ID,
		StartTime: start,
		EndTime:   start.Add(svc.Duration()),
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > maxIdempotencyKeyLen {
			return domain.Appointment{}, invalidInput("idempotency_key", "max", "idempotency key too long")
		}
		appt.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("salon:create_appointment:"+clientID+":"+key))
	}

	var (
		out     domain.Appointment
		created bool
	)
	err = s.appts.InStaffTransaction(ctx, []string{staffID}, func(ctx context.Context, tx store.BookingTx) error {
		// A replay of the same key must reach the store, so its own row is excluded.
		if err := ensureFree(ctx, tx, appt, appt.ID); err != nil {
			return err
		}
		var err error
		out, created, err = tx.CreateAppointment(ctx, appt)
		return err
	})
	if err != nil {
		return domain.Appointment{}, s.mapStoreError(err)
	}
	out.Service = &svc

	if created {
		s.log.Info("appointment booked",
			slog.String("appointment_id", out.ID.String()),
			slog.String("staff_id", out.StaffID),
			slog.Time("start_time", out.StartTime),
		)
		if err := s.confirmer.AppointmentBooked(ctx, out); err != nil {
			s.log.Warn("booking confirmation failed",
				slog.String("appointment_id", out.ID.String()),
				slog.Any("err", err),
			)
		}
	}
	return out, nil
}

type EditInput struct {
	AppointmentID uuid.UUID
	ActorID       string
	// StaffID and ServiceID keep their current values when empty.
	StaffID   string
	ServiceID *uuid.UUID
	StartTime *time.Time
	// ExpectedVersion is the version the caller read. Zero means the version loaded
	// at the start of the edit.
	ExpectedVersion int64
}

func (s *Service) Edit(ctx context.Context, in EditInput) (domain.Appointment, error) {
	original, err := s.load(ctx, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := s.authorize(ctx, in.ActorID, original); err != nil {
		return domain.Appointment{}, err
	}

	serviceID := original.ServiceID
	if in.ServiceID != nil {
		serviceID = in.ServiceID
	}
	if serviceID == nil {
		return domain.Appointment{}, validationError(ErrInvalidService, "service_id", "required", "please choose a service")
	}
	svc, err := s.resolveService(ctx, *serviceID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if in.StartTime == nil || in.StartTime.IsZero() {
		return domain.Appointment{}, validationError(ErrMissingSchedule, "start_time", "required", "please choose a date and time")
	}
	staffID := strings.TrimSpace(in.StaffID)
	if staffID == "" {
		staffID = original.StaffID
	}
	if err := s.checkStaff(ctx, staffID); err != nil {
		return domain.Appointment{}, err
	}

	start := in.StartTime.In(s.hours.Location)
	if err := s.checkSchedule(start, svc.Duration()); err != nil {
		return domain.Appointment{}, err
	}

	expected := in.ExpectedVersion
	if expected == 0 {
		expected = original.Version
	}

	next := original
	next.StaffID = staffID
	next.ServiceID = &svc.ID
	next.StartTime = start
	next.EndTime = start.Add(svc.Duration())
	next.Service = nil

	var out domain.Appointment
	err = s.appts.InStaffTransaction(ctx, []string{original.StaffID, staffID}, func(ctx context.Context, tx store.BookingTx) error {
		if err := ensureFree(ctx, tx, next, next.ID); err != nil {
			return err
		}
		var err error
		out, err = tx.UpdateAppointment(ctx, next, expected)
		return err
	})
	if err != nil {
		return domain.Appointment{}, s.mapStoreError(err)
	}
	out.Service = &svc

	s.log.Info("appointment rescheduled",
		slog.String("appointment_id", out.ID.String()),
		slog.String("actor_id", in.ActorID),
		slog.Int64("version", out.Version),
	)
	return out, nil
}

func (s *Service) Delete(ctx context.Context, appointmentID uuid.UUID, actorID string) error {
	appt, err := s.load(ctx, appointmentID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, appt); err != nil {
		return err
	}
	if err := s.appts.Delete(ctx, appointmentID); err != nil {
		return s.mapStoreError(err)
	}
	s.log.Info("appointment deleted",
		slog.String("appointment_id", appointmentID.String()),
		slog.String("actor_id", actorID),
	)
	return nil
}

// Get returns appointment details to its client or assigned hairdresser.
func (s *Service) Get(ctx context.Context, appointmentID uuid.UUID, actorID string) (domain.Appointment, error) {
	appt, err := s.load(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := s.authorize(ctx, actorID, appt); err != nil {
		return domain.Appointment{}, err
	}
	return appt, nil
}

// List returns the actor's appointments, newest first: those booked by the actor, or
// for RoleStaff those assigned to the actor.
func (s *Service) List(ctx context.Context, actorID string, role domain.Role) ([]domain.Appointment, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, invalidInput("actor_id", "required", "actor is required")
	}
	if role == domain.RoleStaff {
		return s.appts.ListForStaff(ctx, actorID)
	}
	return s.appts.ListForClient(ctx, actorID)
}

// ListForActor resolves the actor's role through the user directory and lists.
func (s *Service) ListForActor(ctx context.Context, actorID string) ([]domain.Appointment, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, invalidInput("actor_id", "required", "actor is required")
	}
	isStaff, err := s.directory.IsInRole(ctx, actorID, domain.RoleStaff)
	if err != nil {
		return nil, err
	}
	role := domain.RoleClient
	if isStaff {
		role = domain.RoleStaff
	}
	return s.List(ctx, actorID, role)
}

// Availability lists the services that can start at candidate with the hairdresser
// and every hourly slot already taken on that day.
func (s *Service) Availability(ctx context.Context, staffID string, candidate time.Time) (scheduling.Availability, error) {
	staffID = strings.TrimSpace(staffID)
	if err := s.checkStaff(ctx, staffID); err != nil {
		return scheduling.Availability{}, err
	}
	candidate = candidate.In(s.hours.Location)

	from, to := s.hours.DayBounds(candidate)
	booked, err := s.appts.ListStaffAppointments(ctx, staffID, from, to)
	if err != nil {
		return scheduling.Availability{}, err
	}
	catalog, err := s.catalog.ListServices(ctx)
	if err != nil {
		return scheduling.Availability{}, err
	}
	return scheduling.ComputeAvailability(s.hours, intervals(booked), catalog, candidate), nil
}

// Candidate builds a start instant in the salon's location from calendar input.
func (s *Service) Candidate(year, month, day int, clock string) (time.Time, error) {
	t, err := s.hours.Candidate(year, month, day, clock)
	if err != nil {
		return time.Time{}, invalidInput("date", "format", err.Error())
	}
	// Availability is computed on hourly slots.
	if t.Minute() != 0 {
		return time.Time{}, invalidInput("hour", string(scheduling.RuleAlignment), "hour must be a full hour")
	}
	return t, nil
}

func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.catalog.ListServices(ctx)
}

func (s *Service) ListStaff(ctx context.Context) ([]domain.User, error) {
	return s.directory.UsersInRole(ctx, domain.RoleStaff)
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	if id == uuid.Nil {
		return domain.Appointment{}, invalidInput("appointment_id", "required", "appointment is required")
	}
	appt, err := s.appts.Get(ctx, id)
	if err != nil {
		return domain.Appointment{}, s.mapStoreError(err)
	}
	return appt, nil
}

// authorize allows the booking client, or the assigned hairdresser while they still
// hold the staff role.
func (s *Service) authorize(ctx context.Context, actorID string, appt domain.Appointment) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ErrForbidden
	}
	if actorID == appt.ClientID {
		return nil
	}
	if actorID == appt.StaffID {
		ok, err := s.directory.IsInRole(ctx, actorID, domain.RoleStaff)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return ErrForbidden
}

func (s *Service) resolveService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	if id == uuid.Nil {
		return domain.Service{}, validationError(ErrInvalidService, "service_id", "required", "please choose a service")
	}
	svc, err := s.catalog.GetService(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Service{}, validationError(ErrInvalidService, "service_id", "exists", "the selected service does not exist")
	}
	if err != nil {
		return domain.Service{}, err
	}
	if svc.DurationMinutes <= 0 {
		return domain.Service{}, validationError(ErrInvalidService, "service_id", "duration", "the selected service has no duration")
	}
	return svc, nil
}

func (s *Service) checkStaff(ctx context.Context, staffID string) error {
	if staffID == "" {
		return validationError(ErrInvalidStaff, "staff_id", "required", "please choose a hairdresser")
	}
	ok, err := s.directory.IsInRole(ctx, staffID, domain.RoleStaff)
	if err != nil {
		return err
	}
	if !ok {
		return validationError(ErrInvalidStaff, "staff_id", "role", "the selected user is not a hairdresser")
	}
	return nil
}

func (s *Service) checkClient(ctx context.Context, clientID string) error {
	if _, err := s.directory.GetUser(ctx, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return unknownClient()
		}
		return err
	}
	return nil
}

func (s *Service) checkSchedule(start time.Time, d time.Duration) error {
	vs := s.hours.Check(start, d, s.now())
	if len(vs) == 0 {
		return nil
	}
	out := &ValidationError{Kind: ErrInvalidSchedule, Violations: make([]Violation, 0, len(vs))}
	for _, v := range vs {
		out.Violations = append(out.Violations, Violation{
			Field:   "start_time",
			Rule:    string(v.Rule),
			Message: v.Message,
		})
	}
	return out
}

func ensureFree(ctx context.Context, tx store.BookingTx, appt domain.Appointment, exclude uuid.UUID) error {
	existing, err := tx.ListOverlapping(ctx, appt.StaffID, appt.StartTime, appt.EndTime)
	if err != nil {
		return err
	}
	candidate := scheduling.Interval{ID: appt.ID, Start: appt.StartTime, End: appt.EndTime}
	if scheduling.HasConflict(intervals(existing), candidate, exclude) {
		return scheduleConflict()
	}
	return nil
}

func (s *Service) mapStoreError(err error) error {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		return err
	case errors.Is(err, store.ErrConflict):
		return scheduleConflict()
	case errors.Is(err, store.ErrStaleVersion):
		return ErrConcurrencyConflict
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrUnknownClient):
		return unknownClient()
	case errors.Is(err, store.ErrUnknownStaff):
		return validationError(ErrInvalidStaff, "staff_id", "exists", "the selected hairdresser does not exist")
	case errors.Is(err, store.ErrUnknownService):
		return validationError(ErrInvalidService, "service_id", "exists", "the selected service does not exist")
	case errors.Is(err, store.ErrIdempotencyConflict):
		return invalidInput("idempotency_key", "reused", "idempotency key was already used for a different booking")
	}
	return fmt.Errorf("appointments store: %w", err)
}

func intervals(appts []domain.Appointment) []scheduling.Interval {
	out := make([]scheduling.Interval, 0, len(appts))
	for _, a := range appts {
		out = append(out, scheduling.Interval{ID: a.ID, Start: a.StartTime, End: a.EndTime})
	}
	return out
}
