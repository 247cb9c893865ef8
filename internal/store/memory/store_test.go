package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

var (
	_ store.AppointmentRepository = (*Store)(nil)
	_ store.ServiceCatalog        = (*Store)(nil)
	_ store.UserDirectory         = (*Store)(nil)
)

func seeded(t *testing.T) (*Store, domain.Service) {
	t.Helper()
	s := New()
	ctx := context.Background()
	svc, err := s.SaveService(ctx, domain.Service{Name: "Men's haircut", DurationMinutes: 60, Price: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("SaveService error: %v", err)
	}
	if err := s.SaveUser(ctx, domain.User{ID: "s1", FirstName: "Jan", LastName: "Kowalski"}, domain.RoleStaff); err != nil {
		t.Fatalf("SaveUser error: %v", err)
	}
	return s, svc
}

func book(s *Store, a domain.Appointment) (domain.Appointment, bool, error) {
	var out domain.Appointment
	var created bool
	err := s.InStaffTransaction(context.Background(), []string{a.StaffID}, func(ctx context.Context, tx store.BookingTx) error {
		var err error
		out, created, err = tx.CreateAppointment(ctx, a)
		return err
	})
	return out, created, err
}

func TestStore_CreateReplayAndOverlap(t *testing.T) {
	s, svc := seeded(t)
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	a := domain.Appointment{
		ID:        uuid.New(),
		ClientID:  "c1",
		StaffID:   "s1",
		ServiceID: &svc.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}

	got, created, err := book(s, a)
	if err != nil || !created {
		t.Fatalf("create: created=%v err=%v", created, err)
	}
	if got.Version != 1 || got.Service == nil {
		t.Fatalf("created appointment = %+v", got)
	}

	if _, created, err := book(s, a); err != nil || created {
		t.Fatalf("replay: created=%v err=%v", created, err)
	}

	moved := a
	moved.StartTime = start.Add(time.Hour)
	moved.EndTime = start.Add(2 * time.Hour)
	if _, _, err := book(s, moved); !errors.Is(err, store.ErrIdempotencyConflict) {
		t.Fatalf("replay with different slot err = %v", err)
	}

	other := a
	other.ID = uuid.New()
	other.StartTime = start.Add(30 * time.Minute)
	other.EndTime = start.Add(90 * time.Minute)
	if _, _, err := book(s, other); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("overlap err = %v, want %v", err, store.ErrConflict)
	}
}

func TestStore_TransactionRollsBackOnError(t *testing.T) {
	s, svc := seeded(t)
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	err := s.InStaffTransaction(context.Background(), []string{"s1"}, func(ctx context.Context, tx store.BookingTx) error {
		if _, _, err := tx.CreateAppointment(ctx, domain.Appointment{
			ClientID: "c1", StaffID: "s1", ServiceID: &svc.ID,
			StartTime: start, EndTime: start.Add(time.Hour),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	rows, _ := s.ListForStaff(context.Background(), "s1")
	if len(rows) != 0 {
		t.Fatalf("rows after rollback = %d, want 0", len(rows))
	}
}

func TestStore_UpdateVersionAndServiceDeletion(t *testing.T) {
	s, svc := seeded(t)
	ctx := context.Background()
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)

	a, _, err := book(s, domain.Appointment{
		ClientID: "c1", StaffID: "s1", ServiceID: &svc.ID,
		StartTime: start, EndTime: start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}

	err = s.InStaffTransaction(ctx, []string{"s1"}, func(ctx context.Context, tx store.BookingTx) error {
		moved := a
		moved.StartTime = start.Add(2 * time.Hour)
		moved.EndTime = start.Add(3 * time.Hour)
		if _, err := tx.UpdateAppointment(ctx, moved, 5); !errors.Is(err, store.ErrStaleVersion) {
			t.Errorf("stale err = %v", err)
		}
		updated, err := tx.UpdateAppointment(ctx, moved, a.Version)
		if err != nil {
			return err
		}
		if updated.Version != 2 {
			t.Errorf("version = %d, want 2", updated.Version)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update tx error: %v", err)
	}

	if err := s.DeleteService(ctx, svc.ID); err != nil {
		t.Fatalf("DeleteService error: %v", err)
	}
	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.ServiceID != nil || got.Service != nil {
		t.Fatalf("service reference kept after deletion: %+v", got)
	}
	if got.Duration() != time.Hour {
		t.Fatalf("duration = %v, want 1h", got.Duration())
	}
}

func TestStore_ListOrdering(t *testing.T) {
	s, svc := seeded(t)
	base := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	for _, h := range []int{3, 0, 6} {
		if _, _, err := book(s, domain.Appointment{
			ClientID: "c1", StaffID: "s1", ServiceID: &svc.ID,
			StartTime: base.Add(time.Duration(h) * time.Hour),
			EndTime:   base.Add(time.Duration(h+1) * time.Hour),
		}); err != nil {
			t.Fatalf("create error: %v", err)
		}
	}

	rows, _ := s.ListForClient(context.Background(), "c1")
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].StartTime.After(rows[i].StartTime) {
			t.Fatalf("client list not descending: %v then %v", rows[i-1].StartTime, rows[i].StartTime)
		}
	}

	day, _ := s.ListStaffAppointments(context.Background(), "s1", base, base.Add(4*time.Hour))
	if len(day) != 2 || !day[0].StartTime.Equal(base) {
		t.Fatalf("staff window = %v", day)
	}
}
