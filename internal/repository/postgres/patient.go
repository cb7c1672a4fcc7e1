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

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

const patientSelect = `
	SELECT p.id, p.nombre, p.cedula, p.edad, p.telefono, p.direccion,
	       p.created_at, p.updated_at`

const patientFrom = `
	FROM pacientes p`

const patientOrder = ` ORDER BY p.created_at DESC, p.id DESC`

// Free-text search matches the patient name; the patient-set key lets
// caregiver scopes restrict the listing. The other record filter keys
// have no meaning on this table.
var patientFilterColumns = filterColumns{
	model.FilterText:       "p.nombre",
	model.FilterPatientSet: "p.id",
}

func (r *patientRepository) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	query := patientSelect + patientFrom + ` WHERE p.id = $1`

	var patient model.Patient
	err := r.GetDB().GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, page model.Page) ([]*model.Patient, error) {
	return r.Search(ctx, nil, page)
}

func (r *patientRepository) Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Patient, error) {
	conds, args, next := buildConditions(patientFilterColumns, filters, 1)
	limits, pageArgs, _ := pageClause(page, next)
	args = append(args, pageArgs...)

	query := patientSelect + patientFrom + whereClause(conds) + patientOrder + limits

	patients := []*model.Patient{}
	if err := r.GetDB().SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search patients: %w", err)
	}
	return patients, nil
}

func (r *patientRepository) Count(ctx context.Context, filters model.FilterSet) (int64, error) {
	conds, args, _ := buildConditions(patientFilterColumns, filters, 1)
	query := `SELECT COUNT(*)` + patientFrom + whereClause(conds)

	var total int64
	if err := r.GetDB().GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return total, nil
}

func (r *patientRepository) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	query, args := insertStatement("pacientes", fields)

	var id int64
	if err := r.GetDB().GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("failed to create patient: %w", err)
	}
	return id, nil
}

func (r *patientRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	query, args := updateStatement("pacientes", id, fields)

	result, err := r.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Delete removes a patient only while no assignment references it. The
// check and the delete run in one transaction.
func (r *patientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var assigned bool
		err := tx.GetContext(ctx, &assigned, `
			SELECT EXISTS (SELECT 1 FROM asignaciones WHERE id_paciente = $1)
			    OR EXISTS (SELECT 1 FROM paciente_cuidador WHERE id_paciente = $1)`, id)
		if err != nil {
			return fmt.Errorf("failed to check patient assignments: %w", err)
		}
		if assigned {
			return repository.ErrPatientAssigned
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM pacientes WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete patient: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *patientRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM pacientes WHERE id = $1)`, id)
}

func (r *patientRepository) HasAssignments(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `
		SELECT EXISTS (SELECT 1 FROM asignaciones WHERE id_paciente = $1)
		    OR EXISTS (SELECT 1 FROM paciente_cuidador WHERE id_paciente = $1)`, id)
}
