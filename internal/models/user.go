package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleClubHead Role = "club_head"
	RoleFaculty  Role = "faculty"
	RoleAdmin    Role = "admin"
)

// Identity is the resolved caller: what the auth middleware places in the
// request context after verifying the bearer token.
type Identity struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Email string `json:"email"`
}

func (i Identity) HasRole(allowed ...Role) bool {
	for _, r := range allowed {
		if i.Role == r {
			return true
		}
	}
	return false
}

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email,unique,notnull" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Role         Role      `bun:"role,notnull" json:"role"`
	ClubOrDept   string    `bun:"club_or_dept,nullzero" json:"clubOrDept,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}
