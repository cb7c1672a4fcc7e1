package user

import (
	"context"
	"fmt"
	"time"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/pkg/errors"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/security"
	"github.com/asistia/care-api/pkg/validator"
)

// Service manages the user accounts the other services reference as
// authors, caregivers and audit actors. All operations are
// administrator-only.
type Service struct {
	repo     repository.UserRepository
	hasher   security.PasswordHasher
	validate *validator.Validator
	logger   *logger.Logger
}

func NewService(
	repo repository.UserRepository,
	hasher security.PasswordHasher,
	validate *validator.Validator,
	logger *logger.Logger,
) *Service {
	return &Service{repo: repo, hasher: hasher, validate: validate, logger: logger}
}

func (s *Service) Get(ctx context.Context, caller model.Caller, id int64) *model.Response {
	if caller.Role != model.RoleAdministrador && caller.ID != id {
		return s.fail(errors.Authorization("acceso denegado"))
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if u == nil {
		return s.fail(errors.NotFound("usuario"))
	}
	return model.OK("usuario obtenido", u)
}

func (s *Service) ListByRole(ctx context.Context, caller model.Caller, role model.Role, page model.Page) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if !role.Valid() {
		return s.fail(errors.Validation("el campo rol no es válido"))
	}
	if !page.Valid() {
		return s.fail(errors.Validation("parámetros de paginación inválidos"))
	}

	users, err := s.repo.ListByRole(ctx, role, page)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	return model.OK("usuarios obtenidos", users)
}

func (s *Service) Create(ctx context.Context, caller model.Caller, req *model.CreateUserRequest) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail(appErr)
	}

	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if existing != nil {
		return s.fail(errors.Conflict("el correo ya está registrado", nil))
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return s.fail(errors.Store(err))
	}

	fields := map[string]interface{}{
		"nombre":        req.Name,
		"email":         req.Email,
		"rol":           string(req.Role),
		"password_hash": hash,
		"created_at":    time.Now().UTC(),
	}

	id, err := s.repo.Create(ctx, fields)
	if err != nil {
		return s.fail(errors.Store(err))
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if u == nil {
		return s.fail(errors.Store(fmt.Errorf("user %d missing after insert", id)))
	}
	return model.OK("usuario creado", u)
}

func (s *Service) fail(err error) *model.Response {
	if errors.IsStore(err) {
		s.logger.Error(err, "user operation failed")
	}
	return model.Fail(errors.PublicMessage(err))
}
