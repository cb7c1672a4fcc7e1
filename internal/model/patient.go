package model

import "time"

type Patient struct {
	ID         int64      `db:"id" json:"id"`
	Name       string     `db:"nombre" json:"nombre"`
	NationalID string     `db:"cedula" json:"cedula"`
	Age        int        `db:"edad" json:"edad"`
	Phone      string     `db:"telefono" json:"telefono"`
	Address    string     `db:"direccion" json:"direccion"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type CreatePatientRequest struct {
	Name       string `json:"nombre" validate:"required,max=150"`
	NationalID string `json:"cedula" validate:"required,max=20"`
	Age        int    `json:"edad" validate:"required,gt=0,lte=130"`
	Phone      string `json:"telefono" validate:"omitempty,max=20"`
	Address    string `json:"direccion" validate:"omitempty,max=250"`
}

type UpdatePatientRequest struct {
	Name    *string `json:"nombre" validate:"omitempty,max=150"`
	Age     *int    `json:"edad" validate:"omitempty,gt=0,lte=130"`
	Phone   *string `json:"telefono" validate:"omitempty,max=20"`
	Address *string `json:"direccion" validate:"omitempty,max=250"`
}

// Fields builds the partial column map for the allow-listed mutable
// fields. The national id is fixed at creation.
func (r *UpdatePatientRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Name != nil {
		fields["nombre"] = *r.Name
	}
	if r.Age != nil {
		fields["edad"] = *r.Age
	}
	if r.Phone != nil {
		fields["telefono"] = *r.Phone
	}
	if r.Address != nil {
		fields["direccion"] = *r.Address
	}
	return fields
}

type SearchPatientsRequest struct {
	Text   string `json:"texto" form:"texto" validate:"omitempty,max=100"`
	Limit  int    `json:"limit" form:"limit" validate:"gte=0"`
	Offset int    `json:"offset" form:"offset" validate:"gte=0"`
}

func (r *SearchPatientsRequest) ToFilterSet() FilterSet {
	filters := FilterSet{}
	if r.Text != "" {
		filters[FilterText] = r.Text
	}
	return filters
}
