package postgres

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

func TestLockOrder(t *testing.T) {
	got := lockOrder([]string{"s2", "", "s1", "s2", "s3", "s1"})
	want := []string{"s1", "s2", "s3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("lockOrder = %v, want %v", got, want)
	}
	if got := lockOrder(nil); len(got) != 0 {
		t.Fatalf("lockOrder(nil) = %v, want empty", got)
	}
}

func TestMapWriteError(t *testing.T) {
	overlap := &pgconn.PgError{Code: "23P01", ConstraintName: "appointments_no_overlap"}
	if err := mapWriteError(overlap); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("overlap err = %v, want %v", err, store.ErrConflict)
	}

	otherExclusion := &pgconn.PgError{Code: "23P01", ConstraintName: "something_else"}
	if err := mapWriteError(otherExclusion); err != otherExclusion {
		t.Fatalf("unrelated exclusion err = %v, want passthrough", err)
	}

	tests := []struct {
		constraint string
		want       error
	}{
		{"appointments_client_id_fkey", store.ErrUnknownClient},
		{"appointments_staff_id_fkey", store.ErrUnknownStaff},
		{"appointments_service_id_fkey", store.ErrUnknownService},
	}
	for _, tt := range tests {
		fk := &pgconn.PgError{Code: "23503", ConstraintName: tt.constraint}
		if err := mapWriteError(fk); !errors.Is(err, tt.want) {
			t.Fatalf("%s err = %v, want %v", tt.constraint, err, tt.want)
		}
	}

	otherFK := &pgconn.PgError{Code: "23503", ConstraintName: "user_roles_user_id_fkey"}
	if err := mapWriteError(otherFK); err != otherFK {
		t.Fatalf("unrelated foreign key err = %v, want passthrough", err)
	}

	plain := errors.New("boom")
	if err := mapWriteError(plain); err != plain {
		t.Fatalf("plain err = %v, want passthrough", err)
	}
}

func TestSameBooking(t *testing.T) {
	svc := uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	otherSvc := uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	start := time.Date(2026, 11, 2, 14, 0, 0, 0, time.UTC)

	base := domain.Appointment{
		ClientID:  "c1",
		StaffID:   "s1",
		ServiceID: &svc,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}

	sameInstantOtherZone := base
	sameInstantOtherZone.StartTime = start.In(time.FixedZone("CET", 3600))
	if !sameBooking(base, sameInstantOtherZone) {
		t.Fatalf("same instants in different zones must match")
	}

	tests := []struct {
		name   string
		mutate func(a *domain.Appointment)
	}{
		{name: "client", mutate: func(a *domain.Appointment) { a.ClientID = "c2" }},
		{name: "staff", mutate: func(a *domain.Appointment) { a.StaffID = "s2" }},
		{name: "service", mutate: func(a *domain.Appointment) { a.ServiceID = &otherSvc }},
		{name: "service removed", mutate: func(a *domain.Appointment) { a.ServiceID = nil }},
		{name: "start", mutate: func(a *domain.Appointment) { a.StartTime = start.Add(time.Hour) }},
		{name: "end", mutate: func(a *domain.Appointment) { a.EndTime = start.Add(2 * time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.mutate(&changed)
			if sameBooking(base, changed) {
				t.Fatalf("expected mismatch on %s", tt.name)
			}
		})
	}
}

func TestDetachRemovedService(t *testing.T) {
	a := domain.Appointment{Service: &domain.Service{}}
	detachRemovedService(&a)
	if a.Service != nil {
		t.Fatalf("service should be cleared when service_id is null")
	}

	id := uuid.New()
	b := domain.Appointment{ServiceID: &id, Service: &domain.Service{ID: id}}
	detachRemovedService(&b)
	if b.Service == nil {
		t.Fatalf("service should be kept when service_id is set")
	}
}
