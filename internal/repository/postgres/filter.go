package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/asistia/care-api/internal/model"
)

// The dynamic WHERE clauses of every repository are built here and
// nowhere else. Each filter key maps to exactly one predicate
// template; values are always bound as parameters, never concatenated
// into the SQL text. Predicates compose with AND only.

// filterColumns maps a filter key to the column it predicates on for
// one repository. A key missing from the map is not searchable on
// that table.
type filterColumns map[model.FilterKey]string

// filterOrder fixes predicate order so generated SQL is deterministic.
var filterOrder = []model.FilterKey{
	model.FilterAuthor,
	model.FilterPatient,
	model.FilterPatientSet,
	model.FilterDateFrom,
	model.FilterDateTo,
	model.FilterText,
}

var predicateTemplates = map[model.FilterKey]string{
	model.FilterAuthor:     "%s = $%d",
	model.FilterPatient:    "%s = $%d",
	model.FilterPatientSet: "%s = ANY($%d)",
	model.FilterDateFrom:   "%s >= $%d",
	model.FilterDateTo:     "%s <= $%d",
	model.FilterText:       "%s ILIKE $%d",
}

// buildConditions renders the present filters into predicate strings
// and bind arguments, numbering parameters from next.
func buildConditions(cols filterColumns, filters model.FilterSet, next int) ([]string, []interface{}, int) {
	var conds []string
	var args []interface{}

	for _, key := range filterOrder {
		value, present := filters[key]
		if !present {
			continue
		}
		column, searchable := cols[key]
		if !searchable {
			continue
		}

		conds = append(conds, fmt.Sprintf(predicateTemplates[key], column, next))
		args = append(args, bindValue(key, value))
		next++
	}

	return conds, args, next
}

func bindValue(key model.FilterKey, value interface{}) interface{} {
	switch key {
	case model.FilterPatientSet:
		switch ids := value.(type) {
		case []int64:
			return pq.Array(ids)
		default:
			return pq.Array(value)
		}
	case model.FilterText:
		return "%" + fmt.Sprintf("%v", value) + "%"
	default:
		return value
	}
}

// whereClause joins predicates into a WHERE clause, or returns the
// empty string when no filter is present.
func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// pageClause renders LIMIT/OFFSET. Limit 0 means unbounded: no LIMIT
// is emitted, only the offset when non-zero.
func pageClause(page model.Page, next int) (string, []interface{}, int) {
	var sb strings.Builder
	var args []interface{}

	if page.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", next))
		args = append(args, page.Limit)
		next++
	}
	if page.Offset > 0 {
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", next))
		args = append(args, page.Offset)
		next++
	}

	return sb.String(), args, next
}
