package model

import "time"

// Role is the closed set of caller roles. Values are the strings the
// identity service and the database use.
type Role string

const (
	RoleAdministrador Role = "Administrador"
	RoleMedico        Role = "Medico"
	RoleProfesional   Role = "Profesional"
	RoleCuidador      Role = "Cuidador"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrador, RoleMedico, RoleProfesional, RoleCuidador:
		return true
	}
	return false
}

// Caller identifies the authenticated user a service call acts for.
// The HTTP layer fills it in from the validated token; services trust
// it.
type Caller struct {
	ID   int64 `json:"id"`
	Role Role  `json:"rol"`
}

type User struct {
	ID           int64      `db:"id" json:"id"`
	Name         string     `db:"nombre" json:"nombre"`
	Email        string     `db:"email" json:"email"`
	Role         Role       `db:"rol" json:"rol"`
	PasswordHash string     `db:"password_hash" json:"-"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type CreateUserRequest struct {
	Name     string `json:"nombre" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email,max=150"`
	Role     Role   `json:"rol" validate:"required,oneof=Administrador Medico Profesional Cuidador"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}
