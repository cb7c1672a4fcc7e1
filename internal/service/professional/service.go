package professional

import (
	"context"
	"fmt"
	"time"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/pkg/errors"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/validator"
)

// Service manages the professional registry. Reads are open to staff;
// mutations are administrator-only.
type Service struct {
	repo     repository.ProfessionalRepository
	validate *validator.Validator
	logger   *logger.Logger
}

func NewService(repo repository.ProfessionalRepository, validate *validator.Validator, logger *logger.Logger) *Service {
	return &Service{repo: repo, validate: validate, logger: logger}
}

func (s *Service) Get(ctx context.Context, caller model.Caller, id int64) *model.Response {
	if caller.Role == model.RoleCuidador {
		return s.fail(errors.Authorization("acceso denegado"))
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if p == nil {
		return s.fail(errors.NotFound("profesional"))
	}
	return model.OK("profesional obtenido", p)
}

func (s *Service) List(ctx context.Context, caller model.Caller, page model.Page) *model.Response {
	if caller.Role == model.RoleCuidador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if !page.Valid() {
		return s.fail(errors.Validation("parámetros de paginación inválidos"))
	}

	items, err := s.repo.List(ctx, page)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	return model.OK("profesionales obtenidos", items)
}

func (s *Service) Create(ctx context.Context, caller model.Caller, req *model.CreateProfessionalRequest) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail(appErr)
	}

	fields := map[string]interface{}{
		"nombre":       req.Name,
		"telefono":     req.Phone,
		"documento":    req.Document,
		"especialidad": req.Specialty,
		"created_at":   time.Now().UTC(),
	}
	if req.UserID != nil {
		fields["id_usuario"] = *req.UserID
	}

	id, err := s.repo.Create(ctx, fields)
	if err != nil {
		return s.fail(errors.Store(err))
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if p == nil {
		return s.fail(errors.Store(fmt.Errorf("professional %d missing after insert", id)))
	}
	return model.OK("profesional creado", p)
}

func (s *Service) Update(ctx context.Context, caller model.Caller, id int64, req *model.UpdateProfessionalRequest) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail(appErr)
	}

	fields := req.Fields()
	if len(fields) == 0 {
		return s.fail(errors.Validation("nada que actualizar"))
	}
	fields["updated_at"] = time.Now().UTC()

	ok, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if !ok {
		return s.fail(errors.NotFound("profesional"))
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if p == nil {
		return s.fail(errors.Store(fmt.Errorf("professional %d missing after update", id)))
	}
	return model.OK("profesional actualizado", p)
}

func (s *Service) Delete(ctx context.Context, caller model.Caller, id int64) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if !ok {
		return s.fail(errors.NotFound("profesional"))
	}
	return model.OK("profesional eliminado", nil)
}

func (s *Service) fail(err error) *model.Response {
	if errors.IsStore(err) {
		s.logger.Error(err, "professional operation failed")
	}
	return model.Fail(errors.PublicMessage(err))
}
