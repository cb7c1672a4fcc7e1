package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

type assignmentRepository struct {
	BaseRepository
}

func NewAssignmentRepository(base BaseRepository) repository.AssignmentRepository {
	return &assignmentRepository{base}
}

const assignmentSelect = `
	SELECT a.id, a.id_usuario, a.id_paciente, a.created_at,
	       COALESCE(u.nombre, '') AS usuario,
	       COALESCE(p.nombre, '') AS paciente
	FROM asignaciones a
	LEFT JOIN usuarios u ON u.id = a.id_usuario
	LEFT JOIN pacientes p ON p.id = a.id_paciente`

// Create verifies both ends of the pair and inserts within one
// transaction. Uniqueness of the pair is enforced by the store.
func (r *assignmentRepository) Create(ctx context.Context, userID, patientID int64) (int64, error) {
	var id int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var found bool
		if err := tx.GetContext(ctx, &found, `SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1)`, userID); err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if !found {
			return repository.ErrUserMissing
		}
		if err := tx.GetContext(ctx, &found, `SELECT EXISTS (SELECT 1 FROM pacientes WHERE id = $1)`, patientID); err != nil {
			return fmt.Errorf("failed to check patient: %w", err)
		}
		if !found {
			return repository.ErrPatientMissing
		}

		err := tx.GetContext(ctx, &id, `
			INSERT INTO asignaciones (id_usuario, id_paciente, created_at)
			VALUES ($1, $2, NOW()) RETURNING id`, userID, patientID)
		if isUniqueViolation(err) {
			return repository.ErrDuplicateAssignment
		}
		if err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *assignmentRepository) Delete(ctx context.Context, userID, patientID int64) (bool, error) {
	result, err := r.GetDB().ExecContext(ctx,
		`DELETE FROM asignaciones WHERE id_usuario = $1 AND id_paciente = $2`,
		userID, patientID)
	if err != nil {
		return false, fmt.Errorf("failed to delete assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *assignmentRepository) ListByUser(ctx context.Context, userID int64, page model.Page) ([]*model.Assignment, error) {
	limits, pageArgs, _ := pageClause(page, 2)
	args := append([]interface{}{userID}, pageArgs...)

	query := assignmentSelect + ` WHERE a.id_usuario = $1 ORDER BY a.created_at DESC, a.id DESC` + limits

	assignments := []*model.Assignment{}
	if err := r.GetDB().SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (r *assignmentRepository) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Assignment, error) {
	limits, pageArgs, _ := pageClause(page, 2)
	args := append([]interface{}{patientID}, pageArgs...)

	query := assignmentSelect + ` WHERE a.id_paciente = $1 ORDER BY a.created_at DESC, a.id DESC` + limits

	assignments := []*model.Assignment{}
	if err := r.GetDB().SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (r *assignmentRepository) ListPatientIDs(ctx context.Context, userID int64) ([]int64, error) {
	ids := []int64{}
	err := r.GetDB().SelectContext(ctx, &ids,
		`SELECT id_paciente FROM asignaciones WHERE id_usuario = $1 ORDER BY id_paciente`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned patient ids: %w", err)
	}
	return ids, nil
}

func (r *assignmentRepository) Exists(ctx context.Context, userID, patientID int64) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM asignaciones WHERE id_usuario = $1 AND id_paciente = $2)`,
		userID, patientID)
}

type caregiverAssignmentRepository struct {
	BaseRepository
}

func NewCaregiverAssignmentRepository(base BaseRepository) repository.CaregiverAssignmentRepository {
	return &caregiverAssignmentRepository{base}
}

const caregiverAssignmentSelect = `
	SELECT c.id, c.id_paciente, c.id_cuidador, c.creado_por, c.created_at,
	       COALESCE(p.nombre, '') AS paciente,
	       COALESCE(u.nombre, '') AS cuidador
	FROM paciente_cuidador c
	LEFT JOIN pacientes p ON p.id = c.id_paciente
	LEFT JOIN usuarios u ON u.id = c.id_cuidador`

func (r *caregiverAssignmentRepository) Create(ctx context.Context, patientID, caregiverID, actorID int64) (int64, error) {
	var id int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var found bool
		if err := tx.GetContext(ctx, &found, `SELECT EXISTS (SELECT 1 FROM pacientes WHERE id = $1)`, patientID); err != nil {
			return fmt.Errorf("failed to check patient: %w", err)
		}
		if !found {
			return repository.ErrPatientMissing
		}
		if err := tx.GetContext(ctx, &found,
			`SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1 AND rol = $2)`,
			caregiverID, string(model.RoleCuidador)); err != nil {
			return fmt.Errorf("failed to check caregiver: %w", err)
		}
		if !found {
			return repository.ErrUserMissing
		}

		err := tx.GetContext(ctx, &id, `
			INSERT INTO paciente_cuidador (id_paciente, id_cuidador, creado_por, created_at)
			VALUES ($1, $2, $3, NOW()) RETURNING id`, patientID, caregiverID, actorID)
		if isUniqueViolation(err) {
			return repository.ErrDuplicateAssignment
		}
		if err != nil {
			return fmt.Errorf("failed to create caregiver assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *caregiverAssignmentRepository) Delete(ctx context.Context, patientID, caregiverID int64) (bool, error) {
	result, err := r.GetDB().ExecContext(ctx,
		`DELETE FROM paciente_cuidador WHERE id_paciente = $1 AND id_cuidador = $2`,
		patientID, caregiverID)
	if err != nil {
		return false, fmt.Errorf("failed to delete caregiver assignment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *caregiverAssignmentRepository) ListByCaregiver(ctx context.Context, caregiverID int64, page model.Page) ([]*model.CaregiverAssignment, error) {
	limits, pageArgs, _ := pageClause(page, 2)
	args := append([]interface{}{caregiverID}, pageArgs...)

	query := caregiverAssignmentSelect + ` WHERE c.id_cuidador = $1 ORDER BY c.created_at DESC, c.id DESC` + limits

	assignments := []*model.CaregiverAssignment{}
	if err := r.GetDB().SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list caregiver assignments: %w", err)
	}
	return assignments, nil
}

func (r *caregiverAssignmentRepository) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.CaregiverAssignment, error) {
	limits, pageArgs, _ := pageClause(page, 2)
	args := append([]interface{}{patientID}, pageArgs...)

	query := caregiverAssignmentSelect + ` WHERE c.id_paciente = $1 ORDER BY c.created_at DESC, c.id DESC` + limits

	assignments := []*model.CaregiverAssignment{}
	if err := r.GetDB().SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list caregiver assignments: %w", err)
	}
	return assignments, nil
}

// ListPatientIDs is the source of the caregiver scope. Callers query
// it per request; nothing caches its result.
func (r *caregiverAssignmentRepository) ListPatientIDs(ctx context.Context, caregiverID int64) ([]int64, error) {
	ids := []int64{}
	err := r.GetDB().SelectContext(ctx, &ids,
		`SELECT id_paciente FROM paciente_cuidador WHERE id_cuidador = $1 ORDER BY id_paciente`, caregiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list caregiver patient ids: %w", err)
	}
	return ids, nil
}

func (r *caregiverAssignmentRepository) Exists(ctx context.Context, patientID, caregiverID int64) (bool, error) {
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM paciente_cuidador WHERE id_paciente = $1 AND id_cuidador = $2)`,
		patientID, caregiverID)
}
