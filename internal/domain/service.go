package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Service is a bookable catalog entry. DurationMinutes is always minutes.
type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID              uuid.UUID       `bun:"id,pk,type:uuid"`
	Name            string          `bun:"name,notnull" validate:"required,max=200"`
	DurationMinutes int             `bun:"duration_minutes,notnull" validate:"min=15,max=480"`
	Price           decimal.Decimal `bun:"price,type:numeric(10,2),notnull" validate:"gte=0"`
	CreatedAt       time.Time       `bun:"created_at,notnull"`
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

func (s *Service) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if s.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		s.ID = id
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}
