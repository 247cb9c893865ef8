package grpc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/requestid"
	"salonbook/backend/internal/scheduling"
	"salonbook/backend/internal/service/appointments"
)

type AppointmentsServer struct {
	svc appointmentsService
	log *slog.Logger
}

var _ AppointmentsServiceServer = (*AppointmentsServer)(nil)

type appointmentsService interface {
	Create(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error)
	Edit(ctx context.Context, in appointments.EditInput) (domain.Appointment, error)
	Delete(ctx context.Context, appointmentID uuid.UUID, actorID string) error
	Get(ctx context.Context, appointmentID uuid.UUID, actorID string) (domain.Appointment, error)
	List(ctx context.Context, actorID string, role domain.Role) ([]domain.Appointment, error)
	ListForActor(ctx context.Context, actorID string) ([]domain.Appointment, error)
	Availability(ctx context.Context, staffID string, candidate time.Time) (scheduling.Availability, error)
	Candidate(year, month, day int, clock string) (time.Time, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
	ListStaff(ctx context.Context) ([]domain.User, error)
}

func NewAppointmentsServer(svc appointmentsService, log *slog.Logger) *AppointmentsServer {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.appointments")),
	}
}

func (s *AppointmentsServer) rpcLogger(ctx context.Context, rpc string) *slog.Logger {
	log := s.log.With(slog.String("rpc", rpc))
	if id := requestid.FromContext(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	return log
}

func (s *AppointmentsServer) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*CreateAppointmentResponse, error) {
	log := s.rpcLogger(ctx, "CreateAppointment")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	serviceID, err := parseOptionalUUID(req.ServiceID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_service_id"), slog.String("client_id", req.ClientID))
		return nil, invalidArgument("service_id", "service_id must be a UUID")
	}

	appt, err := s.svc.Create(ctx, appointments.CreateInput{
		ClientID:       req.ClientID,
		StaffID:        req.StaffID,
		ServiceID:      serviceID,
		StartTime:      req.StartTime,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, toStatus(log, err,
			slog.String("client_id", req.ClientID),
			slog.String("staff_id", req.StaffID),
		)
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("client_id", appt.ClientID),
		slog.String("staff_id", appt.StaffID),
		slog.Time("start_time", appt.StartTime),
	)
	return &CreateAppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("idempotency-key")
	if len(values) == 0 {
		values = md.Get("x-idempotency-key")
	}
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func (s *AppointmentsServer) EditAppointment(ctx context.Context, req *EditAppointmentRequest) (*EditAppointmentResponse, error) {
	log := s.rpcLogger(ctx, "EditAppointment")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_appointment_id"), slog.String("actor_id", req.ActorID))
		return nil, invalidArgument("appointment_id", "appointment_id must be a UUID")
	}
	in := appointments.EditInput{
		AppointmentID:   appointmentID,
		ActorID:         req.ActorID,
		StaffID:         req.StaffID,
		StartTime:       req.StartTime,
		ExpectedVersion: req.ExpectedVersion,
	}
	if strings.TrimSpace(req.ServiceID) != "" {
		serviceID, err := uuid.Parse(strings.TrimSpace(req.ServiceID))
		if err != nil {
			log.Warn("invalid request", slog.String("reason", "bad_service_id"), slog.String("actor_id", req.ActorID))
			return nil, invalidArgument("service_id", "service_id must be a UUID")
		}
		in.ServiceID = &serviceID
	}

	appt, err := s.svc.Edit(ctx, in)
	if err != nil {
		return nil, toStatus(log, err,
			slog.String("appointment_id", req.AppointmentID),
			slog.String("actor_id", req.ActorID),
		)
	}

	log.Info("appointment updated",
		slog.String("appointment_id", appt.ID.String()),
		slog.Int64("version", appt.Version),
	)
	return &EditAppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *AppointmentsServer) DeleteAppointment(ctx context.Context, req *DeleteAppointmentRequest) (*DeleteAppointmentResponse, error) {
	log := s.rpcLogger(ctx, "DeleteAppointment")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_appointment_id"), slog.String("actor_id", req.ActorID))
		return nil, invalidArgument("appointment_id", "appointment_id must be a UUID")
	}

	if err := s.svc.Delete(ctx, appointmentID, req.ActorID); err != nil {
		return nil, toStatus(log, err,
			slog.String("appointment_id", req.AppointmentID),
			slog.String("actor_id", req.ActorID),
		)
	}

	log.Info("appointment deleted", slog.String("appointment_id", req.AppointmentID))
	return &DeleteAppointmentResponse{}, nil
}

func (s *AppointmentsServer) GetAppointment(ctx context.Context, req *GetAppointmentRequest) (*GetAppointmentResponse, error) {
	log := s.rpcLogger(ctx, "GetAppointment")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_appointment_id"), slog.String("actor_id", req.ActorID))
		return nil, invalidArgument("appointment_id", "appointment_id must be a UUID")
	}

	appt, err := s.svc.Get(ctx, appointmentID, req.ActorID)
	if err != nil {
		return nil, toStatus(log, err,
			slog.String("appointment_id", req.AppointmentID),
			slog.String("actor_id", req.ActorID),
		)
	}
	return &GetAppointmentResponse{Appointment: toAppointment(appt)}, nil
}

func (s *AppointmentsServer) ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	log := s.rpcLogger(ctx, "ListAppointments")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var (
		appts []domain.Appointment
		err   error
	)
	switch role := domain.Role(strings.TrimSpace(req.Role)); {
	case role == "":
		appts, err = s.svc.ListForActor(ctx, req.ActorID)
	case role.Valid():
		appts, err = s.svc.List(ctx, req.ActorID, role)
	default:
		log.Warn("invalid request", slog.String("reason", "bad_role"), slog.String("role", req.Role))
		return nil, invalidArgument("role", "role must be client or hairdresser")
	}
	if err != nil {
		return nil, toStatus(log, err, slog.String("actor_id", req.ActorID))
	}

	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointment(a))
	}
	log.Debug("appointments listed", slog.String("actor_id", req.ActorID), slog.Int("count", len(out)))
	return &ListAppointmentsResponse{Appointments: out}, nil
}

func (s *AppointmentsServer) GetAvailability(ctx context.Context, req *GetAvailabilityRequest) (*GetAvailabilityResponse, error) {
	log := s.rpcLogger(ctx, "GetAvailability")

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	candidate, err := s.svc.Candidate(req.Year, req.Month, req.Day, req.Hour)
	if err != nil {
		return nil, toStatus(log, err, slog.String("staff_id", req.StaffID))
	}

	av, err := s.svc.Availability(ctx, req.StaffID, candidate)
	if err != nil {
		return nil, toStatus(log, err,
			slog.String("staff_id", req.StaffID),
			slog.Time("candidate", candidate),
		)
	}

	out := &GetAvailabilityResponse{
		AvailableServices: make([]ServiceInfo, 0, len(av.Bookable)),
		BlockedHours:      make([]time.Time, 0, len(av.BlockedSlots)),
	}
	for _, svc := range av.Bookable {
		out.AvailableServices = append(out.AvailableServices, ToServiceInfo(svc))
	}
	out.BlockedHours = append(out.BlockedHours, av.BlockedSlots...)
	return out, nil
}

func (s *AppointmentsServer) ListServices(ctx context.Context, _ *ListServicesRequest) (*ListServicesResponse, error) {
	log := s.rpcLogger(ctx, "ListServices")

	services, err := s.svc.ListServices(ctx)
	if err != nil {
		return nil, toStatus(log, err)
	}
	out := make([]ServiceInfo, 0, len(services))
	for _, svc := range services {
		out = append(out, ToServiceInfo(svc))
	}
	return &ListServicesResponse{Services: out}, nil
}

func (s *AppointmentsServer) ListStaff(ctx context.Context, _ *ListStaffRequest) (*ListStaffResponse, error) {
	log := s.rpcLogger(ctx, "ListStaff")

	users, err := s.svc.ListStaff(ctx)
	if err != nil {
		return nil, toStatus(log, err)
	}
	out := make([]StaffMember, 0, len(users))
	for _, u := range users {
		out = append(out, toStaffMember(u))
	}
	return &ListStaffResponse{Staff: out}, nil
}

// parseOptionalUUID maps an empty string to uuid.Nil so the service reports the
// missing value with its own rule.
func parseOptionalUUID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}
