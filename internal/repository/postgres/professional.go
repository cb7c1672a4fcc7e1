package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
)

type professionalRepository struct {
	BaseRepository
}

func NewProfessionalRepository(base BaseRepository) repository.ProfessionalRepository {
	return &professionalRepository{base}
}

const professionalSelect = `
	SELECT pr.id, pr.nombre, pr.telefono, pr.documento, pr.especialidad,
	       pr.id_usuario, pr.created_at, pr.updated_at
	FROM profesionales pr`

func (r *professionalRepository) GetByID(ctx context.Context, id int64) (*model.Professional, error) {
	var prof model.Professional
	err := r.GetDB().GetContext(ctx, &prof, professionalSelect+` WHERE pr.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return &prof, nil
}

func (r *professionalRepository) List(ctx context.Context, page model.Page) ([]*model.Professional, error) {
	limits, pageArgs, _ := pageClause(page, 1)

	query := professionalSelect + ` ORDER BY pr.nombre ASC, pr.id ASC` + limits

	profs := []*model.Professional{}
	if err := r.GetDB().SelectContext(ctx, &profs, query, pageArgs...); err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return profs, nil
}

func (r *professionalRepository) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	query, args := insertStatement("profesionales", fields)

	var id int64
	if err := r.GetDB().GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("failed to create professional: %w", err)
	}
	return id, nil
}

func (r *professionalRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	query, args := updateStatement("profesionales", id, fields)

	result, err := r.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update professional: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *professionalRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.GetDB().ExecContext(ctx, `DELETE FROM profesionales WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete professional: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *professionalRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM profesionales WHERE id = $1)`, id)
}
