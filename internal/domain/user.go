package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// Role is a capability attached to a user. Staff are ordinary users holding RoleStaff.
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "hairdresser"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleStaff
}

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk"`
	FirstName string    `bun:"first_name,notnull"`
	LastName  string    `bun:"last_name,notnull"`
	Email     string    `bun:"email,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

func (u User) DisplayName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	}
	return u.FirstName + " " + u.LastName
}

type UserRole struct {
	bun.BaseModel `bun:"table:user_roles"`

	UserID string `bun:"user_id,pk"`
	Role   Role   `bun:"role,pk"`
}
