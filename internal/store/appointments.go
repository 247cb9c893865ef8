package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salonbook/backend/internal/domain"
)

type AppointmentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	// ListStaffAppointments returns the staff member's appointments starting in [from, to).
	ListStaffAppointments(ctx context.Context, staffID string, from, to time.Time) ([]domain.Appointment, error)
	ListForClient(ctx context.Context, clientID string) ([]domain.Appointment, error)
	ListForStaff(ctx context.Context, staffID string) ([]domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// InStaffTransaction runs fn while holding exclusive booking locks for every
	// staff member in staffIDs. Locks are taken in sorted order.
	InStaffTransaction(ctx context.Context, staffIDs []string, fn func(ctx context.Context, tx BookingTx) error) error
}

// BookingTx is the view of the store available while staff calendars are locked.
type BookingTx interface {
	// ListOverlapping returns the staff member's appointments intersecting [start, end).
	ListOverlapping(ctx context.Context, staffID string, start, end time.Time) ([]domain.Appointment, error)
	// CreateAppointment inserts appt. Replaying an identical appointment with the same
	// ID returns the stored row with created=false.
	CreateAppointment(ctx context.Context, appt domain.Appointment) (out domain.Appointment, created bool, err error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment, expectedVersion int64) (domain.Appointment, error)
}
