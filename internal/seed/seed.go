// Package seed loads the demo salon: two hairdressers and the basic service menu.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"salonbook/backend/internal/domain"
)

type ServiceWriter interface {
	SaveService(ctx context.Context, s domain.Service) (domain.Service, error)
}

type UserWriter interface {
	SaveUser(ctx context.Context, u domain.User, roles ...domain.Role) error
}

var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("salon:seed"))

// ServiceID is stable across runs so reseeding updates instead of duplicating.
func ServiceID(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("service:"+name))
}

var Staff = []domain.User{
	{ID: "jan.kowalski", FirstName: "Jan", LastName: "Kowalski", Email: "jan.kowalski@gmail.com"},
	{ID: "anna.kowalska", FirstName: "Anna", LastName: "Kowalska", Email: "anna.kowalska@gmail.com"},
}

var Services = []domain.Service{
	{Name: "Men's haircut", DurationMinutes: 60, Price: decimal.NewFromInt(50)},
	{Name: "Women's haircut", DurationMinutes: 120, Price: decimal.NewFromInt(100)},
	{Name: "Hair colouring", DurationMinutes: 180, Price: decimal.NewFromInt(200)},
	{Name: "Hair treatment", DurationMinutes: 60, Price: decimal.NewFromInt(80)},
}

// Demo upserts the demo hairdressers and services. It is safe to run repeatedly.
func Demo(ctx context.Context, services ServiceWriter, users UserWriter) error {
	for _, u := range Staff {
		if err := users.SaveUser(ctx, u, domain.RoleStaff); err != nil {
			return fmt.Errorf("seed hairdresser %s: %w", u.ID, err)
		}
	}
	for _, s := range Services {
		s.ID = ServiceID(s.Name)
		if _, err := services.SaveService(ctx, s); err != nil {
			return fmt.Errorf("seed service %q: %w", s.Name, err)
		}
	}
	return nil
}
