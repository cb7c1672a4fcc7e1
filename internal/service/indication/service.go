package indication

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/internal/service/event"
	"github.com/asistia/care-api/internal/service/scope"
	"github.com/asistia/care-api/pkg/errors"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/metrics"
	"github.com/asistia/care-api/pkg/validator"
)

const recordType = "indicacion"

// Service implements care indication operations. Indications link
// directly to a patient and may be authored by physicians, care
// professionals or administrators.
type Service struct {
	repo     repository.IndicationRepository
	scopes   *scope.Resolver
	validate *validator.Validator
	events   event.Emitter
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.IndicationRepository,
	scopes *scope.Resolver,
	validate *validator.Validator,
	events event.Emitter,
	logger *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		scopes:   scopes,
		validate: validate,
		events:   events,
		logger:   logger,
		metrics:  m,
	}
}

func (s *Service) Get(ctx context.Context, caller model.Caller, id int64) *model.Response {
	sc, err := s.scopes.Resolve(ctx, caller, scope.OpRead)
	if err != nil {
		return s.fail("get", caller, err)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail("get", caller, errors.Store(err))
	}
	if rec == nil {
		return s.fail("get", caller, errors.NotFoundMsg("indicación no encontrada"))
	}
	if !sc.AllowsPatient(rec.PatientID) {
		return s.fail("get", caller, errors.Authorization("acceso denegado"))
	}

	s.count("get", "success")
	return model.OK("indicación obtenida", rec.ToDetail())
}

func (s *Service) List(ctx context.Context, caller model.Caller, page model.Page) *model.Response {
	return s.list(ctx, caller, model.FilterSet{}, page)
}

func (s *Service) ListByPatient(ctx context.Context, caller model.Caller, patientID int64, page model.Page) *model.Response {
	if patientID <= 0 {
		return s.fail("list", caller, errors.Validation("el campo id_paciente debe ser mayor que 0"))
	}
	return s.list(ctx, caller, model.FilterSet{model.FilterPatient: patientID}, page)
}

func (s *Service) ListByAuthor(ctx context.Context, caller model.Caller, authorID int64, page model.Page) *model.Response {
	if authorID <= 0 {
		return s.fail("list", caller, errors.Validation("el campo id_autor debe ser mayor que 0"))
	}
	return s.list(ctx, caller, model.FilterSet{model.FilterAuthor: authorID}, page)
}

func (s *Service) Search(ctx context.Context, caller model.Caller, req *model.SearchRecordsRequest) *model.Response {
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail("search", caller, appErr)
	}
	return s.list(ctx, caller, req.ToFilterSet(), req.Page())
}

func (s *Service) list(ctx context.Context, caller model.Caller, filters model.FilterSet, page model.Page) *model.Response {
	if !page.Valid() {
		return s.fail("list", caller, errors.Validation("parámetros de paginación inválidos"))
	}

	sc, err := s.scopes.Resolve(ctx, caller, scope.OpRead)
	if err != nil {
		return s.fail("list", caller, err)
	}

	if sc.Kind == scope.KindPatients {
		if page.Limit <= 0 {
			return s.fail("list", caller, errors.Validation("el campo limit es obligatorio"))
		}
		if patientID, ok := filters[model.FilterPatient].(int64); ok {
			if !sc.AllowsPatient(patientID) {
				return s.fail("list", caller, errors.Authorization("acceso denegado"))
			}
		} else {
			if len(sc.PatientIDs) == 0 {
				return model.OKList("indicaciones obtenidas", []*model.IndicationSummary{}, 0, model.NewPagination(page.Limit, page.Offset, 0))
			}
			filters = filters.Clone()
			filters[model.FilterPatientSet] = sc.PatientIDs
		}
	}

	items, err := s.repo.Search(ctx, filters, page)
	if err != nil {
		return s.fail("list", caller, errors.Store(err))
	}
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return s.fail("list", caller, errors.Store(err))
	}

	s.count("list", "success")
	return model.OKList("indicaciones obtenidas", model.SummarizeIndications(items), total, model.NewPagination(page.Limit, page.Offset, total))
}

func (s *Service) Create(ctx context.Context, caller model.Caller, req *model.CreateIndicationRequest) *model.Response {
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail("create", caller, appErr)
	}

	if _, err := s.scopes.Resolve(ctx, caller, scope.OpCreate); err != nil {
		return s.fail("create", caller, err)
	}

	authorID := caller.ID
	if req.AuthorID > 0 && req.AuthorID != caller.ID {
		if caller.Role != model.RoleAdministrador {
			return s.fail("create", caller, errors.Authorization("no puede crear indicaciones a nombre de otro autor"))
		}
		authorID = req.AuthorID
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = *req.Date
	}

	fields := map[string]interface{}{
		"id_paciente": req.PatientID,
		"id_autor":    authorID,
		"descripcion": req.Description,
		"fecha":       date,
		"creado_por":  caller.ID,
		"created_at":  now,
	}

	// Patient and author role checks run inside the insert transaction.
	id, err := s.repo.Create(ctx, fields)
	switch {
	case stderrors.Is(err, repository.ErrPatientMissing):
		return s.fail("create", caller, errors.NotFoundMsg("el paciente no existe"))
	case stderrors.Is(err, repository.ErrAuthorMissing):
		return s.fail("create", caller, errors.NotFoundMsg("el autor indicado no existe o no tiene un rol autorizado"))
	case err != nil:
		return s.fail("create", caller, errors.Store(err))
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail("create", caller, errors.Store(err))
	}
	if rec == nil {
		return s.fail("create", caller, errors.Store(fmt.Errorf("indication %d missing after insert", id)))
	}

	s.events.Emit(ctx, "indicacion.creada", map[string]interface{}{
		"id": id, "id_paciente": req.PatientID, "id_autor": authorID, "creado_por": caller.ID,
	})
	s.count("create", "success")
	return model.OK("indicación creada", rec.ToDetail())
}

func (s *Service) Update(ctx context.Context, caller model.Caller, id int64, req *model.UpdateIndicationRequest) *model.Response {
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail("update", caller, appErr)
	}

	sc, err := s.scopes.Resolve(ctx, caller, scope.OpUpdate)
	if err != nil {
		return s.fail("update", caller, err)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail("update", caller, errors.Store(err))
	}
	if rec == nil {
		return s.fail("update", caller, errors.NotFoundMsg("indicación no encontrada"))
	}
	if !sc.AllowsOwner(rec.AuthorID) {
		return s.fail("update", caller, errors.Authorization("acceso denegado"))
	}

	fields := req.Fields()
	if len(fields) == 0 {
		return s.fail("update", caller, errors.Validation("nada que actualizar"))
	}
	fields["updated_at"] = time.Now().UTC()
	fields["actualizado_por"] = caller.ID

	ok, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return s.fail("update", caller, errors.Store(err))
	}
	if !ok {
		return s.fail("update", caller, errors.NotFoundMsg("indicación no encontrada"))
	}

	rec, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail("update", caller, errors.Store(err))
	}
	if rec == nil {
		return s.fail("update", caller, errors.Store(fmt.Errorf("indication %d missing after update", id)))
	}

	s.events.Emit(ctx, "indicacion.actualizada", map[string]interface{}{
		"id": id, "actualizado_por": caller.ID,
	})
	s.count("update", "success")
	return model.OK("indicación actualizada", rec.ToDetail())
}

func (s *Service) Delete(ctx context.Context, caller model.Caller, id int64) *model.Response {
	sc, err := s.scopes.Resolve(ctx, caller, scope.OpDelete)
	if err != nil {
		return s.fail("delete", caller, err)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail("delete", caller, errors.Store(err))
	}
	if rec == nil {
		return s.fail("delete", caller, errors.NotFoundMsg("indicación no encontrada"))
	}
	if !sc.AllowsOwner(rec.AuthorID) {
		return s.fail("delete", caller, errors.Authorization("acceso denegado"))
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fail("delete", caller, errors.Store(err))
	}
	if !ok {
		return s.fail("delete", caller, errors.NotFoundMsg("indicación no encontrada"))
	}

	s.events.Emit(ctx, "indicacion.eliminada", map[string]interface{}{
		"id": id, "eliminado_por": caller.ID,
	})
	s.count("delete", "success")
	return model.OK("indicación eliminada", nil)
}

func (s *Service) fail(operation string, caller model.Caller, err error) *model.Response {
	if errors.IsStore(err) {
		s.logger.Error(err, "indication operation failed", "operation", operation, "caller_id", caller.ID)
	}
	if errors.IsAuthorization(err) && s.metrics != nil {
		s.metrics.AccessDenied.WithLabelValues(recordType, string(caller.Role)).Inc()
	}
	s.count(operation, "failure")
	return model.Fail(errors.PublicMessage(err))
}

func (s *Service) count(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordOperations.WithLabelValues(recordType, operation, outcome).Inc()
	}
}
