package postgres

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asistia/care-api/internal/model"
)

var testColumns = filterColumns{
	model.FilterAuthor:     "r.id_medico",
	model.FilterPatient:    "h.id_paciente",
	model.FilterPatientSet: "h.id_paciente",
	model.FilterDateFrom:   "r.fecha",
	model.FilterDateTo:     "r.fecha",
	model.FilterText:       "r.detalle",
}

func TestBuildConditionsEmpty(t *testing.T) {
	conds, args, next := buildConditions(testColumns, nil, 1)
	assert.Empty(t, conds)
	assert.Empty(t, args)
	assert.Equal(t, 1, next)
	assert.Equal(t, "", whereClause(conds))
}

func TestBuildConditionsSingleFilter(t *testing.T) {
	filters := model.FilterSet{model.FilterAuthor: int64(5)}

	conds, args, next := buildConditions(testColumns, filters, 1)
	require.Len(t, conds, 1)
	assert.Equal(t, "r.id_medico = $1", conds[0])
	assert.Equal(t, []interface{}{int64(5)}, args)
	assert.Equal(t, 2, next)
}

func TestBuildConditionsComposesWithAND(t *testing.T) {
	filters := model.FilterSet{
		model.FilterAuthor:  int64(5),
		model.FilterPatient: int64(10),
		model.FilterText:    "ibuprofeno",
	}

	conds, args, next := buildConditions(testColumns, filters, 1)
	require.Len(t, conds, 3)

	// Parameter numbering follows the fixed filter order.
	assert.Equal(t, "r.id_medico = $1", conds[0])
	assert.Equal(t, "h.id_paciente = $2", conds[1])
	assert.Equal(t, "r.detalle ILIKE $3", conds[2])
	assert.Equal(t, 4, next)

	assert.Equal(t, int64(5), args[0])
	assert.Equal(t, int64(10), args[1])
	assert.Equal(t, "%ibuprofeno%", args[2])

	assert.Equal(t, " WHERE r.id_medico = $1 AND h.id_paciente = $2 AND r.detalle ILIKE $3", whereClause(conds))
}

func TestBuildConditionsDeterministicOrder(t *testing.T) {
	filters := model.FilterSet{
		model.FilterText:     "x",
		model.FilterDateTo:   "2026-01-31",
		model.FilterDateFrom: "2026-01-01",
		model.FilterAuthor:   int64(1),
	}

	first, _, _ := buildConditions(testColumns, filters, 1)
	for i := 0; i < 50; i++ {
		again, _, _ := buildConditions(testColumns, filters, 1)
		assert.Equal(t, first, again)
	}
}

func TestBuildConditionsPatientSetUsesAny(t *testing.T) {
	filters := model.FilterSet{model.FilterPatientSet: []int64{10, 11}}

	conds, args, _ := buildConditions(testColumns, filters, 1)
	require.Len(t, conds, 1)
	assert.Equal(t, "h.id_paciente = ANY($1)", conds[0])
	assert.Equal(t, pq.Array([]int64{10, 11}), args[0])
}

func TestBuildConditionsDateBoundsInclusive(t *testing.T) {
	filters := model.FilterSet{
		model.FilterDateFrom: "2026-01-01",
		model.FilterDateTo:   "2026-01-31",
	}

	conds, _, _ := buildConditions(testColumns, filters, 1)
	require.Len(t, conds, 2)
	assert.Equal(t, "r.fecha >= $1", conds[0])
	assert.Equal(t, "r.fecha <= $2", conds[1])
}

func TestBuildConditionsSkipsUnmappedKeys(t *testing.T) {
	cols := filterColumns{model.FilterText: "p.nombre"}
	filters := model.FilterSet{
		model.FilterAuthor: int64(5),
		model.FilterText:   "ana",
	}

	conds, args, _ := buildConditions(cols, filters, 1)
	require.Len(t, conds, 1)
	assert.Equal(t, "p.nombre ILIKE $1", conds[0])
	assert.Equal(t, "%ana%", args[0])
}

func TestBuildConditionsStartsAtGivenParameter(t *testing.T) {
	filters := model.FilterSet{model.FilterAuthor: int64(5)}

	conds, _, next := buildConditions(testColumns, filters, 3)
	assert.Equal(t, "r.id_medico = $3", conds[0])
	assert.Equal(t, 4, next)
}

func TestPageClause(t *testing.T) {
	t.Run("limit and offset", func(t *testing.T) {
		clause, args, next := pageClause(model.Page{Limit: 20, Offset: 40}, 1)
		assert.Equal(t, " LIMIT $1 OFFSET $2", clause)
		assert.Equal(t, []interface{}{20, 40}, args)
		assert.Equal(t, 3, next)
	})

	t.Run("zero limit means unbounded", func(t *testing.T) {
		clause, args, next := pageClause(model.Page{Limit: 0, Offset: 0}, 1)
		assert.Equal(t, "", clause)
		assert.Empty(t, args)
		assert.Equal(t, 1, next)
	})

	t.Run("offset without limit", func(t *testing.T) {
		clause, args, _ := pageClause(model.Page{Limit: 0, Offset: 10}, 1)
		assert.Equal(t, " OFFSET $1", clause)
		assert.Equal(t, []interface{}{10}, args)
	})
}
