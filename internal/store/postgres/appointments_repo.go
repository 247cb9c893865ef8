package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

type AppointmentRepo struct {
	db bun.IDB
}

func NewAppointmentRepo(db bun.IDB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type bookingTx struct {
	tx bun.Tx
}

func (r *AppointmentRepo) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var a domain.Appointment
	err := r.db.NewSelect().
		Model(&a).
		Relation("Service").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Appointment{}, notFound(err)
	}
	detachRemovedService(&a)
	return a, nil
}

func (r *AppointmentRepo) ListStaffAppointments(ctx context.Context, staffID string, from, to time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("staff_id = ?", staffID).
		Where("start_time >= ?", from).
		Where("start_time < ?", to).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListForClient(ctx context.Context, clientID string) ([]domain.Appointment, error) {
	return r.listBy(ctx, "client_id", clientID)
}

func (r *AppointmentRepo) ListForStaff(ctx context.Context, staffID string) ([]domain.Appointment, error) {
	return r.listBy(ctx, "staff_id", staffID)
}

func (r *AppointmentRepo) listBy(ctx context.Context, column, userID string) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Relation("Service").
		Where("?TableAlias.? = ?", bun.Ident(column), userID).
		OrderExpr("?TableAlias.start_time DESC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		detachRemovedService(&rows[i])
	}
	return rows, nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Appointment)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepo) InStaffTransaction(ctx context.Context, staffIDs []string, fn func(ctx context.Context, tx store.BookingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, id := range lockOrder(staffIDs) {
			if err := lockStaffCalendar(ctx, tx, id); err != nil {
				return err
			}
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

// lockOrder returns the distinct non-empty staff ids in ascending order so that two
// transactions touching the same pair of calendars acquire locks in the same order.
func lockOrder(staffIDs []string) []string {
	seen := make(map[string]struct{}, len(staffIDs))
	out := make([]string, 0, len(staffIDs))
	for _, id := range staffIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func lockStaffCalendar(ctx context.Context, tx bun.Tx, staffID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", staffID).Exec(ctx)
	return err
}

func (r bookingTx) ListOverlapping(ctx context.Context, staffID string, start, end time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.tx.NewSelect().
		Model(&rows).
		Where("staff_id = ?", staffID).
		Where("start_time < ?", end).
		Where("end_time > ?", start).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r bookingTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, bool, error) {
	m := domain.Appointment{
		ID:        appt.ID,
		ClientID:  appt.ClientID,
		StaffID:   appt.StaffID,
		ServiceID: appt.ServiceID,
		StartTime: appt.StartTime,
		EndTime:   appt.EndTime,
	}

	// Only the primary key is a conflict target; overlaps must still raise 23P01.
	res, err := r.tx.NewInsert().
		Model(&m).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, false, mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, false, err
	}
	if affected == 1 {
		m.Service = appt.Service
		return m, true, nil
	}

	var existing domain.Appointment
	err = r.tx.NewSelect().
		Model(&existing).
		Where("id = ?", m.ID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Appointment{}, false, err
	}
	if !sameBooking(existing, appt) {
		return domain.Appointment{}, false, store.ErrIdempotencyConflict
	}
	existing.Service = appt.Service
	return existing, false, nil
}

func (r bookingTx) UpdateAppointment(ctx context.Context, appt domain.Appointment, expectedVersion int64) (domain.Appointment, error) {
	m := appt
	m.Version = expectedVersion + 1

	res, err := r.tx.NewUpdate().
		Model(&m).
		Column("staff_id", "service_id", "start_time", "end_time", "version", "updated_at").
		Where("id = ?", appt.ID).
		Where("version = ?", expectedVersion).
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, mapWriteError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		exists, err := r.tx.NewSelect().
			Model((*domain.Appointment)(nil)).
			Where("id = ?", appt.ID).
			Exists(ctx)
		if err != nil {
			return domain.Appointment{}, err
		}
		if !exists {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, store.ErrStaleVersion
	}
	return m, nil
}

// sameBooking reports whether a replayed create describes the stored appointment.
func sameBooking(existing, appt domain.Appointment) bool {
	if existing.ClientID != appt.ClientID || existing.StaffID != appt.StaffID {
		return false
	}
	if (existing.ServiceID == nil) != (appt.ServiceID == nil) {
		return false
	}
	if existing.ServiceID != nil && *existing.ServiceID != *appt.ServiceID {
		return false
	}
	return existing.StartTime.Equal(appt.StartTime) && existing.EndTime.Equal(appt.EndTime)
}

func detachRemovedService(a *domain.Appointment) {
	if a.ServiceID == nil {
		a.Service = nil
	}
}
