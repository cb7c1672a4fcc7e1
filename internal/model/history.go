package model

import "time"

// MedicalHistory is one clinical history entry for a patient, read
// back with the denormalized patient and author names from the fixed
// join query.
type MedicalHistory struct {
	ID              int64     `db:"id" json:"id"`
	PatientID       int64     `db:"id_paciente" json:"id_paciente"`
	Weight          float64   `db:"peso" json:"peso"`
	Height          float64   `db:"talla" json:"talla"`
	HeartRate       int       `db:"frecuencia_cardiaca" json:"frecuencia_cardiaca"`
	RespiratoryRate int       `db:"frecuencia_respiratoria" json:"frecuencia_respiratoria"`
	BloodPressure   string    `db:"presion_arterial" json:"presion_arterial"`
	Allergies       string    `db:"alergias" json:"alergias"`
	Antecedents     string    `db:"antecedentes" json:"antecedentes"`
	Diagnosis       string    `db:"diagnostico" json:"diagnostico"`
	Date            time.Time `db:"fecha" json:"fecha"`
	Audit
	PatientName string `db:"paciente" json:"paciente"`
	AuthorName  string `db:"autor" json:"autor"`
}

// MedicalHistoryDetail is the single-record view with nested
// sub-objects; MedicalHistorySummary is the flat list view.
type MedicalHistoryDetail struct {
	ID              int64         `json:"id"`
	Weight          float64       `json:"peso"`
	Height          float64       `json:"talla"`
	HeartRate       int           `json:"frecuencia_cardiaca"`
	RespiratoryRate int           `json:"frecuencia_respiratoria"`
	BloodPressure   string        `json:"presion_arterial"`
	Allergies       string        `json:"alergias"`
	Antecedents     string        `json:"antecedentes"`
	Diagnosis       string        `json:"diagnostico"`
	Date            time.Time     `json:"fecha"`
	Patient         RecordPatient `json:"paciente"`
	Author          RecordAuthor  `json:"autor"`
	Audit           AuditInfo     `json:"auditoria"`
}

type MedicalHistorySummary struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"id_paciente"`
	PatientName string    `json:"paciente"`
	Diagnosis   string    `json:"diagnostico"`
	Date        time.Time `json:"fecha"`
	AuthorName  string    `json:"autor"`
}

func (h *MedicalHistory) Detail() *MedicalHistoryDetail {
	return &MedicalHistoryDetail{
		ID:              h.ID,
		Weight:          h.Weight,
		Height:          h.Height,
		HeartRate:       h.HeartRate,
		RespiratoryRate: h.RespiratoryRate,
		BloodPressure:   h.BloodPressure,
		Allergies:       h.Allergies,
		Antecedents:     h.Antecedents,
		Diagnosis:       h.Diagnosis,
		Date:            h.Date,
		Patient:         RecordPatient{ID: h.PatientID, Name: h.PatientName},
		Author:          RecordAuthor{ID: h.CreatedBy, Name: h.AuthorName},
		Audit:           h.Info(),
	}
}

func (h *MedicalHistory) Summary() *MedicalHistorySummary {
	return &MedicalHistorySummary{
		ID:          h.ID,
		PatientID:   h.PatientID,
		PatientName: h.PatientName,
		Diagnosis:   h.Diagnosis,
		Date:        h.Date,
		AuthorName:  h.AuthorName,
	}
}

func Summarize(entries []*MedicalHistory) []*MedicalHistorySummary {
	out := make([]*MedicalHistorySummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Summary())
	}
	return out
}

type CreateMedicalHistoryRequest struct {
	PatientID       int64      `json:"id_paciente" validate:"required,gt=0"`
	Weight          float64    `json:"peso" validate:"required,gt=0,lte=500"`
	Height          float64    `json:"talla" validate:"required,gt=0,lte=300"`
	HeartRate       int        `json:"frecuencia_cardiaca" validate:"required,gt=0,lte=300"`
	RespiratoryRate int        `json:"frecuencia_respiratoria" validate:"required,gt=0,lte=120"`
	BloodPressure   string     `json:"presion_arterial" validate:"required,max=20"`
	Allergies       string     `json:"alergias" validate:"omitempty,max=2000"`
	Antecedents     string     `json:"antecedentes" validate:"omitempty,max=2000"`
	Diagnosis       string     `json:"diagnostico" validate:"required,max=2000"`
	Date            *time.Time `json:"fecha"`
}

type UpdateMedicalHistoryRequest struct {
	Weight          *float64   `json:"peso" validate:"omitempty,gt=0,lte=500"`
	Height          *float64   `json:"talla" validate:"omitempty,gt=0,lte=300"`
	HeartRate       *int       `json:"frecuencia_cardiaca" validate:"omitempty,gt=0,lte=300"`
	RespiratoryRate *int       `json:"frecuencia_respiratoria" validate:"omitempty,gt=0,lte=120"`
	BloodPressure   *string    `json:"presion_arterial" validate:"omitempty,max=20"`
	Allergies       *string    `json:"alergias" validate:"omitempty,max=2000"`
	Antecedents     *string    `json:"antecedentes" validate:"omitempty,max=2000"`
	Diagnosis       *string    `json:"diagnostico" validate:"omitempty,max=2000"`
	Date            *time.Time `json:"fecha"`
}

// Fields builds the partial SET map from the allow-listed mutable
// columns. The patient link and author are fixed at creation.
func (r *UpdateMedicalHistoryRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Weight != nil {
		fields["peso"] = *r.Weight
	}
	if r.Height != nil {
		fields["talla"] = *r.Height
	}
	if r.HeartRate != nil {
		fields["frecuencia_cardiaca"] = *r.HeartRate
	}
	if r.RespiratoryRate != nil {
		fields["frecuencia_respiratoria"] = *r.RespiratoryRate
	}
	if r.BloodPressure != nil {
		fields["presion_arterial"] = *r.BloodPressure
	}
	if r.Allergies != nil {
		fields["alergias"] = *r.Allergies
	}
	if r.Antecedents != nil {
		fields["antecedentes"] = *r.Antecedents
	}
	if r.Diagnosis != nil {
		fields["diagnostico"] = *r.Diagnosis
	}
	if r.Date != nil {
		fields["fecha"] = *r.Date
	}
	return fields
}
