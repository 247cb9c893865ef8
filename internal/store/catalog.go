package store

import (
	"context"

	"github.com/google/uuid"

	"salonbook/backend/internal/domain"
)

type ServiceCatalog interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (domain.Service, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	UsersInRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	IsInRole(ctx context.Context, userID string, role domain.Role) (bool, error)
}
