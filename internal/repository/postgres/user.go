package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

const userSelect = `
	SELECT u.id, u.nombre, u.email, u.rol, u.password_hash,
	       u.created_at, u.updated_at
	FROM usuarios u`

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.GetDB().GetContext(ctx, &user, userSelect+` WHERE u.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.GetDB().GetContext(ctx, &user, userSelect+` WHERE u.email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role model.Role, page model.Page) ([]*model.User, error) {
	limits, pageArgs, _ := pageClause(page, 2)
	args := append([]interface{}{string(role)}, pageArgs...)

	query := userSelect + ` WHERE u.rol = $1 ORDER BY u.nombre ASC, u.id ASC` + limits

	users := []*model.User{}
	if err := r.GetDB().SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	query, args := insertStatement("usuarios", fields)

	var id int64
	if err := r.GetDB().GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1)`, id)
}

func (r *userRepository) HasRole(ctx context.Context, id int64, roles ...model.Role) (bool, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1 AND rol = ANY($2))`,
		id, pq.Array(names),
	)
}
