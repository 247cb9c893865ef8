package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID        uuid.UUID  `bun:"id,pk,type:uuid"`
	ClientID  string     `bun:"client_id,notnull"`
	StaffID   string     `bun:"staff_id,notnull"`
	ServiceID *uuid.UUID `bun:"service_id,type:uuid,nullzero"`
	StartTime time.Time  `bun:"start_time,notnull"`
	EndTime   time.Time  `bun:"end_time,notnull"`
	Version   int64      `bun:"version,notnull"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
	UpdatedAt time.Time  `bun:"updated_at,notnull"`

	// Service is nil once the referenced service has been removed from the catalog.
	Service *Service `bun:"rel:belongs-to,join:service_id=id"`
}

// Duration is the occupancy booked for the appointment. It does not depend on the
// catalog, so it stays valid after the service is deleted.
func (a Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.Version == 0 {
			a.Version = 1
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
