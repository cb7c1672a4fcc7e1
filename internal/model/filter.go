package model

// FilterKey enumerates the fixed set of search predicates. Filters are
// a closed set, never caller-supplied expressions, and compose with
// logical AND only.
type FilterKey string

const (
	// FilterAuthor matches the record's authoring user id.
	FilterAuthor FilterKey = "author"
	// FilterPatient matches a single patient id.
	FilterPatient FilterKey = "patient"
	// FilterPatientSet matches any patient id in a set ([]int64). Used
	// to apply caregiver scopes.
	FilterPatientSet FilterKey = "patient_set"
	// FilterDateFrom / FilterDateTo bound the record date, inclusive on
	// both ends.
	FilterDateFrom FilterKey = "date_from"
	FilterDateTo   FilterKey = "date_to"
	// FilterText is a case-insensitive substring match on the record's
	// free-text column.
	FilterText FilterKey = "text"
)

// FilterSet maps present filter keys to their values. Absent keys
// contribute no predicate.
type FilterSet map[FilterKey]interface{}

func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
