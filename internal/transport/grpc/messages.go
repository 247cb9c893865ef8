package grpc

import (
	"time"

	"github.com/shopspring/decimal"

	"salonbook/backend/internal/domain"
)

type Appointment struct {
	ID        string       `json:"id"`
	ClientID  string       `json:"client_id"`
	StaffID   string       `json:"staff_id"`
	ServiceID string       `json:"service_id,omitempty"`
	Service   *ServiceInfo `json:"service,omitempty"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Version   int64        `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ServiceInfo is a catalog entry. Duration is in minutes.
type ServiceInfo struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Duration int             `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

type StaffMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateAppointmentRequest struct {
	ClientID  string     `json:"client_id"`
	StaffID   string     `json:"staff_id"`
	ServiceID string     `json:"service_id"`
	StartTime *time.Time `json:"start_time,omitempty"`
}

type CreateAppointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}

// EditAppointmentRequest keeps the current hairdresser or service when the field is
// empty.
type EditAppointmentRequest struct {
	AppointmentID   string     `json:"appointment_id"`
	ActorID         string     `json:"actor_id"`
	StaffID         string     `json:"staff_id,omitempty"`
	ServiceID       string     `json:"service_id,omitempty"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	ExpectedVersion int64      `json:"expected_version,omitempty"`
}

type EditAppointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}

type DeleteAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
	ActorID       string `json:"actor_id"`
}

type DeleteAppointmentResponse struct{}

type GetAppointmentRequest struct {
	AppointmentID string `json:"appointment_id"`
	ActorID       string `json:"actor_id"`
}

type GetAppointmentResponse struct {
	Appointment Appointment `json:"appointment"`
}

// ListAppointmentsRequest lists by client or by hairdresser. An empty Role is
// resolved from the user directory.
type ListAppointmentsRequest struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role,omitempty"`
}

type ListAppointmentsResponse struct {
	Appointments []Appointment `json:"appointments"`
}

// GetAvailabilityRequest addresses a calendar cell: Hour is "HH:mm" in salon time.
type GetAvailabilityRequest struct {
	StaffID string `json:"staff_id"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	Day     int    `json:"day"`
	Hour    string `json:"hour"`
}

type GetAvailabilityResponse struct {
	AvailableServices []ServiceInfo `json:"availableServices"`
	BlockedHours      []time.Time   `json:"blockedHours"`
}

type ListServicesRequest struct{}

type ListServicesResponse struct {
	Services []ServiceInfo `json:"services"`
}

type ListStaffRequest struct{}

type ListStaffResponse struct {
	Staff []StaffMember `json:"staff"`
}

func toAppointment(a domain.Appointment) Appointment {
	out := Appointment{
		ID:        a.ID.String(),
		ClientID:  a.ClientID,
		StaffID:   a.StaffID,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.ServiceID != nil {
		out.ServiceID = a.ServiceID.String()
	}
	if a.Service != nil {
		info := ToServiceInfo(*a.Service)
		out.Service = &info
	}
	return out
}

func ToServiceInfo(s domain.Service) ServiceInfo {
	return ServiceInfo{
		ID:       s.ID.String(),
		Name:     s.Name,
		Duration: s.DurationMinutes,
		Price:    s.Price,
	}
}

func toStaffMember(u domain.User) StaffMember {
	return StaffMember{ID: u.ID, Name: u.DisplayName()}
}
