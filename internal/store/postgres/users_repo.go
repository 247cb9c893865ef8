package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

type UserRepo struct {
	db bun.IDB
}

func NewUserRepo(db bun.IDB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.db.NewSelect().
		Model(&u).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.User{}, notFound(err)
	}
	return u, nil
}

func (r *UserRepo) UsersInRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var rows []domain.User
	err := r.db.NewSelect().
		Model(&rows).
		Join("JOIN user_roles AS ur ON ur.user_id = ?TableAlias.id").
		Where("ur.role = ?", role).
		OrderExpr("?TableAlias.last_name ASC, ?TableAlias.first_name ASC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *UserRepo) IsInRole(ctx context.Context, userID string, role domain.Role) (bool, error) {
	return r.db.NewSelect().
		Model((*domain.UserRole)(nil)).
		Where("user_id = ?", userID).
		Where("role = ?", role).
		Exists(ctx)
}

// SaveUser upserts a user and grants roles. Existing grants are kept.
func (r *UserRepo) SaveUser(ctx context.Context, u domain.User, roles ...domain.Role) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&u).
			On("CONFLICT (id) DO UPDATE").
			Set("first_name = EXCLUDED.first_name").
			Set("last_name = EXCLUDED.last_name").
			Set("email = EXCLUDED.email").
			Exec(ctx)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation {
				return store.ErrConflict
			}
			return err
		}
		for _, role := range roles {
			if !role.Valid() {
				return errors.New("invalid role " + string(role))
			}
			_, err := tx.NewInsert().
				Model(&domain.UserRole{UserID: u.ID, Role: role}).
				On("CONFLICT DO NOTHING").
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
