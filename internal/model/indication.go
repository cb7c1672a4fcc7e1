package model

import "time"

// Indication is a free-text care instruction for a patient, authored
// by a physician, professional or administrator. Authorship is
// immutable after creation, same as prescriptions.
type Indication struct {
	ID          int64     `db:"id" json:"id"`
	PatientID   int64     `db:"id_paciente" json:"id_paciente"`
	AuthorID    int64     `db:"id_autor" json:"id_autor"`
	Description string    `db:"descripcion" json:"descripcion"`
	Date        time.Time `db:"fecha" json:"fecha"`
	Audit
	PatientName string `db:"paciente" json:"paciente"`
	AuthorName  string `db:"autor" json:"autor"`
}

type IndicationDetail struct {
	ID          int64         `json:"id"`
	Description string        `json:"descripcion"`
	Date        time.Time     `json:"fecha"`
	Patient     RecordPatient `json:"paciente"`
	Author      RecordAuthor  `json:"autor"`
	Audit       AuditInfo     `json:"auditoria"`
}

type IndicationSummary struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"id_paciente"`
	PatientName string    `json:"paciente"`
	AuthorName  string    `json:"autor"`
	Description string    `json:"descripcion"`
	Date        time.Time `json:"fecha"`
}

func (i *Indication) ToDetail() *IndicationDetail {
	return &IndicationDetail{
		ID:          i.ID,
		Description: i.Description,
		Date:        i.Date,
		Patient:     RecordPatient{ID: i.PatientID, Name: i.PatientName},
		Author:      RecordAuthor{ID: i.AuthorID, Name: i.AuthorName},
		Audit:       i.Info(),
	}
}

func (i *Indication) Summary() *IndicationSummary {
	return &IndicationSummary{
		ID:          i.ID,
		PatientID:   i.PatientID,
		PatientName: i.PatientName,
		AuthorName:  i.AuthorName,
		Description: i.Description,
		Date:        i.Date,
	}
}

func SummarizeIndications(items []*Indication) []*IndicationSummary {
	out := make([]*IndicationSummary, 0, len(items))
	for _, i := range items {
		out = append(out, i.Summary())
	}
	return out
}

type CreateIndicationRequest struct {
	PatientID   int64      `json:"id_paciente" validate:"required,gt=0"`
	AuthorID    int64      `json:"id_autor" validate:"omitempty,gt=0"`
	Description string     `json:"descripcion" validate:"required,max=4000"`
	Date        *time.Time `json:"fecha"`
}

type UpdateIndicationRequest struct {
	Description *string    `json:"descripcion" validate:"omitempty,max=4000"`
	Date        *time.Time `json:"fecha"`
}

func (r *UpdateIndicationRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.Description != nil {
		fields["descripcion"] = *r.Description
	}
	if r.Date != nil {
		fields["fecha"] = *r.Date
	}
	return fields
}
