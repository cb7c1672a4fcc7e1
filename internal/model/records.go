package model

import "time"

// SearchRecordsRequest is the shared search shape of the three record
// types. Each present field becomes exactly one AND-composed predicate.
type SearchRecordsRequest struct {
	AuthorID  *int64     `json:"id_autor" form:"id_autor" validate:"omitempty,gt=0"`
	PatientID *int64     `json:"id_paciente" form:"id_paciente" validate:"omitempty,gt=0"`
	From      *time.Time `json:"desde" form:"desde" validate:"omitempty"`
	To        *time.Time `json:"hasta" form:"hasta" validate:"omitempty"`
	Text      string     `json:"texto" form:"texto" validate:"omitempty,max=200"`
	Limit     int        `json:"limit" form:"limit" validate:"gte=0"`
	Offset    int        `json:"offset" form:"offset" validate:"gte=0"`
}

func (r *SearchRecordsRequest) ToFilterSet() FilterSet {
	filters := FilterSet{}
	if r.AuthorID != nil {
		filters[FilterAuthor] = *r.AuthorID
	}
	if r.PatientID != nil {
		filters[FilterPatient] = *r.PatientID
	}
	if r.From != nil {
		filters[FilterDateFrom] = *r.From
	}
	if r.To != nil {
		filters[FilterDateTo] = *r.To
	}
	if r.Text != "" {
		filters[FilterText] = r.Text
	}
	return filters
}

func (r *SearchRecordsRequest) Page() Page {
	return Page{Limit: r.Limit, Offset: r.Offset}
}
