package postgres

import (
	"fmt"
	"sort"
	"strings"
)

// insertStatement builds an INSERT for exactly the fields given,
// returning the generated id. Column names come from a fixed
// allow-list upstream, never from callers; values are always bound.
func insertStatement(table string, fields map[string]interface{}) (string, []interface{}) {
	columns := sortedColumns(fields)

	placeholders := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for i, col := range columns {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, fields[col])
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args
}

// updateStatement builds a partial UPDATE: only the given fields
// appear in the SET list. The id predicate takes the last parameter.
func updateStatement(table string, id int64, fields map[string]interface{}) (string, []interface{}) {
	columns := sortedColumns(fields)

	sets := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for i, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+1))
		args = append(args, fields[col])
	}
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d",
		table,
		strings.Join(sets, ", "),
		len(columns)+1,
	)
	return query, args
}

func sortedColumns(fields map[string]interface{}) []string {
	columns := make([]string, 0, len(fields))
	for col := range fields {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
