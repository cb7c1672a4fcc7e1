package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
)

type indicationRepository struct {
	BaseRepository
}

func NewIndicationRepository(base BaseRepository) repository.IndicationRepository {
	return &indicationRepository{base}
}

const indicationSelect = `
	SELECT i.id, i.id_paciente, i.id_autor, i.descripcion, i.fecha,
	       i.created_at, i.creado_por, i.updated_at, i.actualizado_por,
	       COALESCE(p.nombre, '') AS paciente,
	       COALESCE(u.nombre, '') AS autor`

const indicationFrom = `
	FROM indicaciones i
	LEFT JOIN pacientes p ON p.id = i.id_paciente
	LEFT JOIN usuarios u ON u.id = i.id_autor`

const indicationOrder = ` ORDER BY i.fecha DESC, i.id DESC`

var indicationFilterColumns = filterColumns{
	model.FilterAuthor:     "i.id_autor",
	model.FilterPatient:    "i.id_paciente",
	model.FilterPatientSet: "i.id_paciente",
	model.FilterDateFrom:   "i.fecha",
	model.FilterDateTo:     "i.fecha",
	model.FilterText:       "i.descripcion",
}

func (r *indicationRepository) GetByID(ctx context.Context, id int64) (*model.Indication, error) {
	query := indicationSelect + indicationFrom + ` WHERE i.id = $1`

	var indicacion model.Indication
	err := r.GetDB().GetContext(ctx, &indicacion, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get indication: %w", err)
	}
	return &indicacion, nil
}

func (r *indicationRepository) List(ctx context.Context, page model.Page) ([]*model.Indication, error) {
	return r.Search(ctx, nil, page)
}

func (r *indicationRepository) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Indication, error) {
	return r.Search(ctx, model.FilterSet{model.FilterPatient: patientID}, page)
}

func (r *indicationRepository) ListByAuthor(ctx context.Context, authorID int64, page model.Page) ([]*model.Indication, error) {
	return r.Search(ctx, model.FilterSet{model.FilterAuthor: authorID}, page)
}

func (r *indicationRepository) Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Indication, error) {
	conds, args, next := buildConditions(indicationFilterColumns, filters, 1)
	limits, pageArgs, _ := pageClause(page, next)
	args = append(args, pageArgs...)

	query := indicationSelect + indicationFrom + whereClause(conds) + indicationOrder + limits

	indicaciones := []*model.Indication{}
	if err := r.GetDB().SelectContext(ctx, &indicaciones, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search indications: %w", err)
	}
	return indicaciones, nil
}

func (r *indicationRepository) Count(ctx context.Context, filters model.FilterSet) (int64, error) {
	conds, args, _ := buildConditions(indicationFilterColumns, filters, 1)
	query := `SELECT COUNT(*)` + indicationFrom + whereClause(conds)

	var total int64
	if err := r.GetDB().GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count indications: %w", err)
	}
	return total, nil
}

// Roles allowed to sign a care indication.
var indicationAuthorRoles = []string{
	string(model.RoleMedico),
	string(model.RoleProfesional),
	string(model.RoleAdministrador),
}

// Create checks the patient and the authoring user inside the insert
// transaction, following the same shape as the assignment creates.
func (r *indicationRepository) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
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

		if err := tx.GetContext(ctx, &found,
			`SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1 AND rol = ANY($2))`,
			fields["id_autor"], pq.Array(indicationAuthorRoles),
		); err != nil {
			return fmt.Errorf("failed to check author: %w", err)
		}
		if !found {
			return repository.ErrAuthorMissing
		}

		query, args := insertStatement("indicaciones", fields)
		if err := tx.GetContext(ctx, &id, query, args...); err != nil {
			return fmt.Errorf("failed to create indication: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *indicationRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	query, args := updateStatement("indicaciones", id, fields)

	result, err := r.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update indication: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *indicationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM indicaciones WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete indication: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *indicationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM indicaciones WHERE id = $1)`, id)
}
