package model

import "time"

// Assignment represents a professional's or physician's caseload link
// to a patient. The (user, patient) pair is unique.
type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"id_usuario" json:"id_usuario"`
	PatientID   int64     `db:"id_paciente" json:"id_paciente"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UserName    string    `db:"usuario" json:"usuario"`
	PatientName string    `db:"paciente" json:"paciente"`
}

// CaregiverAssignment grants a caregiver-role user visibility into one
// patient's records. CreatedBy records the audit actor who made the
// grant.
type CaregiverAssignment struct {
	ID            int64     `db:"id" json:"id"`
	PatientID     int64     `db:"id_paciente" json:"id_paciente"`
	CaregiverID   int64     `db:"id_cuidador" json:"id_cuidador"`
	CreatedBy     int64     `db:"creado_por" json:"creado_por"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	PatientName   string    `db:"paciente" json:"paciente"`
	CaregiverName string    `db:"cuidador" json:"cuidador"`
}

type CreateAssignmentRequest struct {
	UserID    int64 `json:"id_usuario" validate:"required,gt=0"`
	PatientID int64 `json:"id_paciente" validate:"required,gt=0"`
}

type CreateCaregiverAssignmentRequest struct {
	CaregiverID int64 `json:"id_cuidador" validate:"required,gt=0"`
	PatientID   int64 `json:"id_paciente" validate:"required,gt=0"`
}
