package model

import "time"

// Page carries limit/offset pagination for list queries. Limit 0 means
// unbounded; only internal and administrative paths may use it.
type Page struct {
	Limit  int `json:"limit" form:"limit"`
	Offset int `json:"offset" form:"offset"`
}

func (p Page) Valid() bool {
	return p.Limit >= 0 && p.Offset >= 0
}

// Pagination is the metadata block attached to paginated responses.
// The formulas are fixed for parity with existing consumers.
type Pagination struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

func NewPagination(limit, offset int, total int64) *Pagination {
	p := &Pagination{
		Limit:      limit,
		Offset:     offset,
		Total:      total,
		Page:       1,
		TotalPages: 1,
		HasMore:    false,
	}
	if limit > 0 {
		p.Page = offset/limit + 1
		p.TotalPages = int((total + int64(limit) - 1) / int64(limit))
		p.HasMore = int64(p.Page*limit) < total
	}
	return p
}

// Audit holds the audit columns shared by every record type.
type Audit struct {
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	CreatedBy int64      `db:"creado_por" json:"creado_por"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	UpdatedBy *int64     `db:"actualizado_por" json:"actualizado_por,omitempty"`
}

// AuditInfo is the nested audit block of detail views.
type AuditInfo struct {
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy int64      `json:"creado_por"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	UpdatedBy *int64     `json:"actualizado_por,omitempty"`
}

func (a Audit) Info() AuditInfo {
	return AuditInfo{
		CreatedAt: a.CreatedAt,
		CreatedBy: a.CreatedBy,
		UpdatedAt: a.UpdatedAt,
		UpdatedBy: a.UpdatedBy,
	}
}

// RecordPatient and RecordAuthor are the denormalized sub-objects
// nested into detail views.
type RecordPatient struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

type RecordAuthor struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}
