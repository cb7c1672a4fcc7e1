package model

import "time"

type Professional struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"nombre" json:"nombre"`
	Phone     string     `db:"telefono" json:"telefono"`
	Document  string     `db:"documento" json:"documento"`
	Specialty string     `db:"especialidad" json:"especialidad"`
	UserID    *int64     `db:"id_usuario" json:"id_usuario,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type CreateProfessionalRequest struct {
	Name      string `json:"nombre" validate:"required,max=150"`
	Phone     string `json:"telefono" validate:"omitempty,max=20"`
	Document  string `json:"documento" validate:"required,max=30"`
	Specialty string `json:"especialidad" validate:"required,max=100"`
	UserID    *int64 `json:"id_usuario" validate:"omitempty,gt=0"`
}

type UpdateProfessionalRequest struct {
	Name      *string `json:"nombre" validate:"omitempty,max=150"`
	Phone     *string `json:"telefono" validate:"omitempty,max=20"`
	Specialty *string `json:"especialidad" validate:"omitempty,max=100"`
	UserID    *int64  `json:"id_usuario" validate:"omitempty,gt=0"`
}

func (r *UpdateProfessionalRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Name != nil {
		fields["nombre"] = *r.Name
	}
	if r.Phone != nil {
		fields["telefono"] = *r.Phone
	}
	if r.Specialty != nil {
		fields["especialidad"] = *r.Specialty
	}
	if r.UserID != nil {
		fields["id_usuario"] = *r.UserID
	}
	return fields
}
