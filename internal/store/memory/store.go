// Package memory is an in-process store used for tests and single-node demos. All
// booking transactions are serialized behind one mutex, which is a stronger guarantee
// than the per-staff locking of the Postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

type Store struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]domain.Appointment
	services     map[uuid.UUID]domain.Service
	users        map[string]domain.User
	roles        map[string]map[domain.Role]struct{}
	now          func() time.Time
}

func New() *Store {
	return &Store{
		appointments: make(map[uuid.UUID]domain.Appointment),
		services:     make(map[uuid.UUID]domain.Service),
		users:        make(map[string]domain.User),
		roles:        make(map[string]map[domain.Role]struct{}),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) SaveService(_ context.Context, svc domain.Service) (domain.Service, error) {
	if err := svc.Validate(); err != nil {
		return domain.Service{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = s.now()
	}
	s.services[svc.ID] = svc
	return svc, nil
}

// DeleteService removes a catalog entry and clears references to it, like the
// ON DELETE SET NULL foreign key does in Postgres.
func (s *Store) DeleteService(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.services, id)
	for k, a := range s.appointments {
		if a.ServiceID != nil && *a.ServiceID == id {
			a.ServiceID = nil
			s.appointments[k] = a
		}
	}
	return nil
}

func (s *Store) SaveUser(_ context.Context, u domain.User, roles ...domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	granted, ok := s.roles[u.ID]
	if !ok {
		granted = make(map[domain.Role]struct{})
		s.roles[u.ID] = granted
	}
	for _, r := range roles {
		granted[r] = struct{}{}
	}
	return nil
}

func (s *Store) ListServices(_ context.Context) ([]domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) GetService(_ context.Context, id uuid.UUID) (domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[id]
	if !ok {
		return domain.Service{}, store.ErrNotFound
	}
	return svc, nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) UsersInRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.User
	for id, granted := range s.roles {
		if _, ok := granted[role]; ok {
			if u, ok := s.users[id]; ok {
				out = append(out, u)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) IsInRole(_ context.Context, userID string, role domain.Role) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.roles[userID][role]
	return ok, nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	return s.withService(a), nil
}

func (s *Store) ListStaffAppointments(_ context.Context, staffID string, from, to time.Time) ([]domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Appointment
	for _, a := range s.appointments {
		if a.StaffID == staffID && !a.StartTime.Before(from) && a.StartTime.Before(to) {
			out = append(out, a)
		}
	}
	sortByStart(out, false)
	return out, nil
}

func (s *Store) ListForClient(_ context.Context, clientID string) ([]domain.Appointment, error) {
	return s.listBy(func(a domain.Appointment) bool { return a.ClientID == clientID }), nil
}

func (s *Store) ListForStaff(_ context.Context, staffID string) ([]domain.Appointment, error) {
	return s.listBy(func(a domain.Appointment) bool { return a.StaffID == staffID }), nil
}

func (s *Store) listBy(match func(domain.Appointment) bool) []domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Appointment
	for _, a := range s.appointments {
		if match(a) {
			out = append(out, s.withService(a))
		}
	}
	sortByStart(out, true)
	return out
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

// InStaffTransaction holds the store lock for the duration of fn. Writes made by fn
// are discarded if it returns an error or the context is done.
func (s *Store) InStaffTransaction(ctx context.Context, _ []string, fn func(ctx context.Context, tx store.BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := make(map[uuid.UUID]domain.Appointment, len(s.appointments))
	for k, v := range s.appointments {
		snapshot[k] = v
	}

	err := fn(ctx, &bookingTx{s: s})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.appointments = snapshot
		return err
	}
	return nil
}

func (s *Store) withService(a domain.Appointment) domain.Appointment {
	a.Service = nil
	if a.ServiceID != nil {
		if svc, ok := s.services[*a.ServiceID]; ok {
			a.Service = &svc
		}
	}
	return a
}

func sortByStart(rows []domain.Appointment, desc bool) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].StartTime.Equal(rows[j].StartTime) {
			if desc {
				return rows[i].StartTime.After(rows[j].StartTime)
			}
			return rows[i].StartTime.Before(rows[j].StartTime)
		}
		return rows[i].ID.String() < rows[j].ID.String()
	})
}

// bookingTx runs with Store.mu already held.
type bookingTx struct {
	s *Store
}

func (t *bookingTx) ListOverlapping(_ context.Context, staffID string, start, end time.Time) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range t.s.appointments {
		if a.StaffID == staffID && a.StartTime.Before(end) && start.Before(a.EndTime) {
			out = append(out, a)
		}
	}
	sortByStart(out, false)
	return out, nil
}

func (t *bookingTx) CreateAppointment(_ context.Context, appt domain.Appointment) (domain.Appointment, bool, error) {
	if appt.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, false, err
		}
		appt.ID = id
	}
	if existing, ok := t.s.appointments[appt.ID]; ok {
		if existing.ClientID != appt.ClientID || existing.StaffID != appt.StaffID ||
			!sameService(existing.ServiceID, appt.ServiceID) ||
			!existing.StartTime.Equal(appt.StartTime) || !existing.EndTime.Equal(appt.EndTime) {
			return domain.Appointment{}, false, store.ErrIdempotencyConflict
		}
		return t.s.withService(existing), false, nil
	}
	if t.overlaps(appt) {
		return domain.Appointment{}, false, store.ErrConflict
	}

	now := t.s.now()
	appt.Version = 1
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Service = nil
	t.s.appointments[appt.ID] = appt
	return t.s.withService(appt), true, nil
}

func (t *bookingTx) UpdateAppointment(_ context.Context, appt domain.Appointment, expectedVersion int64) (domain.Appointment, error) {
	existing, ok := t.s.appointments[appt.ID]
	if !ok {
		return domain.Appointment{}, store.ErrNotFound
	}
	if existing.Version != expectedVersion {
		return domain.Appointment{}, store.ErrStaleVersion
	}
	if t.overlaps(appt) {
		return domain.Appointment{}, store.ErrConflict
	}

	existing.StaffID = appt.StaffID
	existing.ServiceID = appt.ServiceID
	existing.StartTime = appt.StartTime
	existing.EndTime = appt.EndTime
	existing.Version = expectedVersion + 1
	existing.UpdatedAt = t.s.now()
	t.s.appointments[appt.ID] = existing
	return t.s.withService(existing), nil
}

// overlaps mirrors the exclusion constraint of the Postgres schema.
func (t *bookingTx) overlaps(appt domain.Appointment) bool {
	for id, a := range t.s.appointments {
		if id == appt.ID || a.StaffID != appt.StaffID {
			continue
		}
		if a.StartTime.Before(appt.EndTime) && appt.StartTime.Before(a.EndTime) {
			return true
		}
	}
	return false
}

func sameService(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
