package model

import "time"

// Prescription belongs to one medical-history entry and one authoring
// physician. The author never changes after creation; it is the sole
// key used for ownership checks.
type Prescription struct {
	ID        int64     `db:"id" json:"id"`
	HistoryID int64     `db:"id_historial" json:"id_historial"`
	AuthorID  int64     `db:"id_medico" json:"id_medico"`
	Detail    string    `db:"detalle" json:"detalle"`
	Date      time.Time `db:"fecha" json:"fecha"`
	Audit
	PatientID   int64  `db:"id_paciente" json:"id_paciente"`
	PatientName string `db:"paciente" json:"paciente"`
	AuthorName  string `db:"medico" json:"medico"`
}

type PrescriptionDetail struct {
	ID        int64         `json:"id"`
	HistoryID int64         `json:"id_historial"`
	Detail    string        `json:"detalle"`
	Date      time.Time     `json:"fecha"`
	Patient   RecordPatient `json:"paciente"`
	Author    RecordAuthor  `json:"medico"`
	Audit     AuditInfo     `json:"auditoria"`
}

type PrescriptionSummary struct {
	ID          int64     `json:"id"`
	HistoryID   int64     `json:"id_historial"`
	PatientID   int64     `json:"id_paciente"`
	PatientName string    `json:"paciente"`
	AuthorName  string    `json:"medico"`
	Detail      string    `json:"detalle"`
	Date        time.Time `json:"fecha"`
}

func (p *Prescription) ToDetail() *PrescriptionDetail {
	return &PrescriptionDetail{
		ID:        p.ID,
		HistoryID: p.HistoryID,
		Detail:    p.Detail,
		Date:      p.Date,
		Patient:   RecordPatient{ID: p.PatientID, Name: p.PatientName},
		Author:    RecordAuthor{ID: p.AuthorID, Name: p.AuthorName},
		Audit:     p.Info(),
	}
}

func (p *Prescription) Summary() *PrescriptionSummary {
	return &PrescriptionSummary{
		ID:          p.ID,
		HistoryID:   p.HistoryID,
		PatientID:   p.PatientID,
		PatientName: p.PatientName,
		AuthorName:  p.AuthorName,
		Detail:      p.Detail,
		Date:        p.Date,
	}
}

func SummarizePrescriptions(items []*Prescription) []*PrescriptionSummary {
	out := make([]*PrescriptionSummary, 0, len(items))
	for _, p := range items {
		out = append(out, p.Summary())
	}
	return out
}

type CreatePrescriptionRequest struct {
	HistoryID int64      `json:"id_historial" validate:"required,gt=0"`
	AuthorID  int64      `json:"id_medico" validate:"omitempty,gt=0"`
	Detail    string     `json:"detalle" validate:"required,max=2000"`
	Date      *time.Time `json:"fecha"`
}

type UpdatePrescriptionRequest struct {
	HistoryID *int64     `json:"id_historial" validate:"omitempty,gt=0"`
	Detail    *string    `json:"detalle" validate:"omitempty,max=2000"`
	Date      *time.Time `json:"fecha"`
}

// Fields builds the partial SET map. Only the detail text, the date
// and the linked history entry are mutable; author and primary key
// never appear here.
func (r *UpdatePrescriptionRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.HistoryID != nil {
		fields["id_historial"] = *r.HistoryID
	}
	if r.Detail != nil {
		fields["detalle"] = *r.Detail
	}
	if r.Date != nil {
		fields["fecha"] = *r.Date
	}
	return fields
}
