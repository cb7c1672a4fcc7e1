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

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

// The patient link of a prescription goes through its history entry,
// so patient filters predicate on the joined column.
const prescriptionSelect = `
	SELECT r.id, r.id_historial, r.id_medico, r.detalle, r.fecha,
	       r.created_at, r.creado_por, r.updated_at, r.actualizado_por,
	       COALESCE(h.id_paciente, 0) AS id_paciente,
	       COALESCE(p.nombre, '') AS paciente,
	       COALESCE(u.nombre, '') AS medico`

const prescriptionFrom = `
	FROM recetas r
	LEFT JOIN historial_medico h ON h.id = r.id_historial
	LEFT JOIN pacientes p ON p.id = h.id_paciente
	LEFT JOIN usuarios u ON u.id = r.id_medico`

const prescriptionOrder = ` ORDER BY r.fecha DESC, r.id DESC`

var prescriptionFilterColumns = filterColumns{
	model.FilterAuthor:     "r.id_medico",
	model.FilterPatient:    "h.id_paciente",
	model.FilterPatientSet: "h.id_paciente",
	model.FilterDateFrom:   "r.fecha",
	model.FilterDateTo:     "r.fecha",
	model.FilterText:       "r.detalle",
}

func (r *prescriptionRepository) GetByID(ctx context.Context, id int64) (*model.Prescription, error) {
	query := prescriptionSelect + prescriptionFrom + ` WHERE r.id = $1`

	var receta model.Prescription
	err := r.GetDB().GetContext(ctx, &receta, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &receta, nil
}

func (r *prescriptionRepository) List(ctx context.Context, page model.Page) ([]*model.Prescription, error) {
	return r.Search(ctx, nil, page)
}

func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Prescription, error) {
	return r.Search(ctx, model.FilterSet{model.FilterPatient: patientID}, page)
}

func (r *prescriptionRepository) ListByAuthor(ctx context.Context, authorID int64, page model.Page) ([]*model.Prescription, error) {
	return r.Search(ctx, model.FilterSet{model.FilterAuthor: authorID}, page)
}

func (r *prescriptionRepository) Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Prescription, error) {
	conds, args, next := buildConditions(prescriptionFilterColumns, filters, 1)
	limits, pageArgs, _ := pageClause(page, next)
	args = append(args, pageArgs...)

	query := prescriptionSelect + prescriptionFrom + whereClause(conds) + prescriptionOrder + limits

	recetas := []*model.Prescription{}
	if err := r.GetDB().SelectContext(ctx, &recetas, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search prescriptions: %w", err)
	}
	return recetas, nil
}

func (r *prescriptionRepository) Count(ctx context.Context, filters model.FilterSet) (int64, error) {
	conds, args, _ := buildConditions(prescriptionFilterColumns, filters, 1)
	query := `SELECT COUNT(*)` + prescriptionFrom + whereClause(conds)

	var total int64
	if err := r.GetDB().GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count prescriptions: %w", err)
	}
	return total, nil
}

// Create checks the history entry and the signing physician inside the
// insert transaction. Checking outside it would leave a window where
// either row disappears before the insert lands.
func (r *prescriptionRepository) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	var id int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var found bool
		if err := tx.GetContext(ctx, &found,
			`SELECT EXISTS (SELECT 1 FROM historial_medico WHERE id = $1)`, fields["id_historial"],
		); err != nil {
			return fmt.Errorf("failed to check history entry: %w", err)
		}
		if !found {
			return repository.ErrHistoryMissing
		}

		if err := tx.GetContext(ctx, &found,
			`SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1 AND rol = $2)`,
			fields["id_medico"], string(model.RoleMedico),
		); err != nil {
			return fmt.Errorf("failed to check physician: %w", err)
		}
		if !found {
			return repository.ErrAuthorMissing
		}

		query, args := insertStatement("recetas", fields)
		if err := tx.GetContext(ctx, &id, query, args...); err != nil {
			return fmt.Errorf("failed to create prescription: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	query, args := updateStatement("recetas", id, fields)

	result, err := r.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update prescription: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *prescriptionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM recetas WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete prescription: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *prescriptionRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM recetas WHERE id = $1)`, id)
}

func (r *prescriptionRepository) HistoryExists(ctx context.Context, historyID int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM historial_medico WHERE id = $1)`, historyID)
}
