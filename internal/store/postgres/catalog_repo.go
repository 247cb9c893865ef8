package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"salonbook/backend/internal/domain"
)

type ServiceRepo struct {
	db bun.IDB
}

func NewServiceRepo(db bun.IDB) *ServiceRepo {
	return &ServiceRepo{db: db}
}

func (r *ServiceRepo) ListServices(ctx context.Context) ([]domain.Service, error) {
	var rows []domain.Service
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("name ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ServiceRepo) GetService(ctx context.Context, id uuid.UUID) (domain.Service, error) {
	var s domain.Service
	err := r.db.NewSelect().
		Model(&s).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Service{}, notFound(err)
	}
	return s, nil
}

// SaveService validates and upserts a catalog entry by id.
func (r *ServiceRepo) SaveService(ctx context.Context, s domain.Service) (domain.Service, error) {
	if err := s.Validate(); err != nil {
		return domain.Service{}, err
	}
	_, err := r.db.NewInsert().
		Model(&s).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("duration_minutes = EXCLUDED.duration_minutes").
		Set("price = EXCLUDED.price").
		Exec(ctx)
	if err != nil {
		return domain.Service{}, err
	}
	return s, nil
}
