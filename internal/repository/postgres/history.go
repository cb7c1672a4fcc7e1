package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
)

type medicalHistoryRepository struct {
	BaseRepository
}

func NewMedicalHistoryRepository(base BaseRepository) repository.MedicalHistoryRepository {
	return &medicalHistoryRepository{base}
}

// Fixed join query: history row plus denormalized patient and author
// names. The author of a history entry is its creating user.
const historySelect = `
	SELECT h.id, h.id_paciente, h.peso, h.talla, h.frecuencia_cardiaca,
	       h.frecuencia_respiratoria, h.presion_arterial, h.alergias,
	       h.antecedentes, h.diagnostico, h.fecha,
	       h.created_at, h.creado_por, h.updated_at, h.actualizado_por,
	       COALESCE(p.nombre, '') AS paciente,
	       COALESCE(u.nombre, '') AS autor`

const historyFrom = `
	FROM historial_medico h
	LEFT JOIN pacientes p ON p.id = h.id_paciente
	LEFT JOIN usuarios u ON u.id = h.creado_por`

// Stable default order: record date descending, id as tiebreak.
const historyOrder = ` ORDER BY h.fecha DESC, h.id DESC`

var historyFilterColumns = filterColumns{
	model.FilterAuthor:     "h.creado_por",
	model.FilterPatient:    "h.id_paciente",
	model.FilterPatientSet: "h.id_paciente",
	model.FilterDateFrom:   "h.fecha",
	model.FilterDateTo:     "h.fecha",
	model.FilterText:       "h.diagnostico",
}

func (r *medicalHistoryRepository) GetByID(ctx context.Context, id int64) (*model.MedicalHistory, error) {
	query := historySelect + historyFrom + ` WHERE h.id = $1`

	var entry model.MedicalHistory
	err := r.GetDB().GetContext(ctx, &entry, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medical history entry: %w", err)
	}
	return &entry, nil
}

func (r *medicalHistoryRepository) List(ctx context.Context, page model.Page) ([]*model.MedicalHistory, error) {
	return r.Search(ctx, nil, page)
}

func (r *medicalHistoryRepository) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.MedicalHistory, error) {
	return r.Search(ctx, model.FilterSet{model.FilterPatient: patientID}, page)
}

func (r *medicalHistoryRepository) Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.MedicalHistory, error) {
	conds, args, next := buildConditions(historyFilterColumns, filters, 1)
	limits, pageArgs, _ := pageClause(page, next)
	args = append(args, pageArgs...)

	query := historySelect + historyFrom + whereClause(conds) + historyOrder + limits

	entries := []*model.MedicalHistory{}
	if err := r.GetDB().SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search medical history: %w", err)
	}
	return entries, nil
}

func (r *medicalHistoryRepository) Count(ctx context.Context, filters model.FilterSet) (int64, error) {
	conds, args, _ := buildConditions(historyFilterColumns, filters, 1)
	query := `SELECT COUNT(*)` + historyFrom + whereClause(conds)

	var total int64
	if err := r.GetDB().GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count medical history: %w", err)
	}
	return total, nil
}

// Create checks the referenced patient and inserts the entry in one
// transaction, so a patient deleted after validation cannot end up with
// a dangling history row.
func (r *medicalHistoryRepository) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	var id int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var found bool
		if err := tx.GetContext(ctx, &found,
			`SELECT EXISTS (SELECT 1 FROM pacientes WHERE id = $1)`, fields["id_paciente"],
		); err != nil {
			return fmt.Errorf("failed to check patient: %w", err)
		}
		if !found {
			return repository.ErrPatientMissing
		}

		query, args := insertStatement("historial_medico", fields)
		if err := tx.GetContext(ctx, &id, query, args...); err != nil {
			return fmt.Errorf("failed to create medical history entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *medicalHistoryRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	query, args := updateStatement("historial_medico", id, fields)

	result, err := r.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update medical history entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *medicalHistoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM historial_medico WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete medical history entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *medicalHistoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM historial_medico WHERE id = $1)`, id)
}
