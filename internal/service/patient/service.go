package patient

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/internal/service/scope"
	"github.com/asistia/care-api/pkg/errors"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/validator"
)

// Service implements patient management. Reads follow the caller's
// record scope; mutations are administrator-only.
type Service struct {
	repo     repository.PatientRepository
	scopes   *scope.Resolver
	validate *validator.Validator
	logger   *logger.Logger
}

func NewService(
	repo repository.PatientRepository,
	scopes *scope.Resolver,
	validate *validator.Validator,
	logger *logger.Logger,
) *Service {
	return &Service{repo: repo, scopes: scopes, validate: validate, logger: logger}
}

func (s *Service) Get(ctx context.Context, caller model.Caller, id int64) *model.Response {
	sc, err := s.scopes.Resolve(ctx, caller, scope.OpRead)
	if err != nil {
		return s.fail(err)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if p == nil {
		return s.fail(errors.NotFound("paciente"))
	}
	if !sc.AllowsPatient(p.ID) {
		return s.fail(errors.Authorization("acceso denegado"))
	}

	return model.OK("paciente obtenido", p)
}

func (s *Service) List(ctx context.Context, caller model.Caller, page model.Page) *model.Response {
	return s.search(ctx, caller, model.FilterSet{}, page)
}

func (s *Service) Search(ctx context.Context, caller model.Caller, req *model.SearchPatientsRequest) *model.Response {
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail(appErr)
	}
	return s.search(ctx, caller, req.ToFilterSet(), model.Page{Limit: req.Limit, Offset: req.Offset})
}

func (s *Service) search(ctx context.Context, caller model.Caller, filters model.FilterSet, page model.Page) *model.Response {
	if !page.Valid() {
		return s.fail(errors.Validation("parámetros de paginación inválidos"))
	}

	sc, err := s.scopes.Resolve(ctx, caller, scope.OpRead)
	if err != nil {
		return s.fail(err)
	}
	if sc.Kind == scope.KindPatients {
		if page.Limit <= 0 {
			return s.fail(errors.Validation("el campo limit es obligatorio"))
		}
		if len(sc.PatientIDs) == 0 {
			return model.OKList("pacientes obtenidos", []*model.Patient{}, 0, model.NewPagination(page.Limit, page.Offset, 0))
		}
		filters = filters.Clone()
		filters[model.FilterPatientSet] = sc.PatientIDs
	}

	items, err := s.repo.Search(ctx, filters, page)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return s.fail(errors.Store(err))
	}

	return model.OKList("pacientes obtenidos", items, total, model.NewPagination(page.Limit, page.Offset, total))
}

func (s *Service) Create(ctx context.Context, caller model.Caller, req *model.CreatePatientRequest) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail(appErr)
	}

	fields := map[string]interface{}{
		"nombre":     req.Name,
		"cedula":     req.NationalID,
		"edad":       req.Age,
		"telefono":   req.Phone,
		"direccion":  req.Address,
		"created_at": time.Now().UTC(),
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
		return s.fail(errors.Store(fmt.Errorf("patient %d missing after insert", id)))
	}
	return model.OK("paciente creado", p)
}

func (s *Service) Update(ctx context.Context, caller model.Caller, id int64, req *model.UpdatePatientRequest) *model.Response {
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
		return s.fail(errors.NotFound("paciente"))
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if p == nil {
		return s.fail(errors.Store(fmt.Errorf("patient %d missing after update", id)))
	}
	return model.OK("paciente actualizado", p)
}

// Delete refuses to remove a patient that still has caseload or
// caregiver assignments; those must be removed first.
func (s *Service) Delete(ctx context.Context, caller model.Caller, id int64) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}

	ok, err := s.repo.Delete(ctx, id)
	if stderrors.Is(err, repository.ErrPatientAssigned) {
		return s.fail(errors.Conflict("el paciente tiene asignaciones activas", err))
	}
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if !ok {
		return s.fail(errors.NotFound("paciente"))
	}

	return model.OK("paciente eliminado", nil)
}

func (s *Service) fail(err error) *model.Response {
	if errors.IsStore(err) {
		s.logger.Error(err, "patient operation failed")
	}
	return model.Fail(errors.PublicMessage(err))
}
