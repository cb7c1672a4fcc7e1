package history

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

const recordType = "historial"

// Service implements the medical history operations. Every method
// returns an envelope and no error: failures of any kind become
// Success=false with a caller-safe message, and store errors are
// logged with their cause here and masked outward.
type Service struct {
	repo     repository.MedicalHistoryRepository
	scopes   *scope.Resolver
	validate *validator.Validator
	events   event.Emitter
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	repo repository.MedicalHistoryRepository,
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
		return s.fail("get", caller, errors.NotFound("historial médico"))
	}
	if !sc.AllowsPatient(rec.PatientID) {
		return s.fail("get", caller, errors.Authorization("acceso denegado"))
	}

	s.count("get", "success")
	return model.OK("historial médico obtenido", rec.Detail())
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

func (s *Service) Search(ctx context.Context, caller model.Caller, req *model.SearchRecordsRequest) *model.Response {
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail("search", caller, appErr)
	}
	return s.list(ctx, caller, req.ToFilterSet(), req.Page())
}

// list is the shared read path of List, ListByPatient and Search. The
// caller's scope is applied before the query runs, so restricted
// callers can never observe even the count of off-scope records.
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
				return model.OKList("historial médico obtenido", []*model.MedicalHistorySummary{}, 0, model.NewPagination(page.Limit, page.Offset, 0))
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
	return model.OKList("historial médico obtenido", model.Summarize(items), total, model.NewPagination(page.Limit, page.Offset, total))
}

func (s *Service) Create(ctx context.Context, caller model.Caller, req *model.CreateMedicalHistoryRequest) *model.Response {
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail("create", caller, appErr)
	}

	if _, err := s.scopes.Resolve(ctx, caller, scope.OpCreate); err != nil {
		return s.fail("create", caller, err)
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = *req.Date
	}

	fields := map[string]interface{}{
		"id_paciente":             req.PatientID,
		"peso":                    req.Weight,
		"talla":                   req.Height,
		"frecuencia_cardiaca":     req.HeartRate,
		"frecuencia_respiratoria": req.RespiratoryRate,
		"presion_arterial":        req.BloodPressure,
		"alergias":                req.Allergies,
		"antecedentes":            req.Antecedents,
		"diagnostico":             req.Diagnosis,
		"fecha":                   date,
		"creado_por":              caller.ID,
		"created_at":              now,
	}

	id, err := s.repo.Create(ctx, fields)
	if stderrors.Is(err, repository.ErrPatientMissing) {
		return s.fail("create", caller, errors.NotFoundMsg("el paciente no existe"))
	}
	if err != nil {
		return s.fail("create", caller, errors.Store(err))
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail("create", caller, errors.Store(err))
	}
	if rec == nil {
		return s.fail("create", caller, errors.Store(fmt.Errorf("medical history entry %d missing after insert", id)))
	}

	s.events.Emit(ctx, "historial.creado", map[string]interface{}{
		"id": id, "id_paciente": req.PatientID, "creado_por": caller.ID,
	})
	s.count("create", "success")
	return model.OK("historial médico creado", rec.Detail())
}

func (s *Service) Update(ctx context.Context, caller model.Caller, id int64, req *model.UpdateMedicalHistoryRequest) *model.Response {
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
		return s.fail("update", caller, errors.NotFound("historial médico"))
	}
	if !sc.AllowsOwner(rec.CreatedBy) {
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
		return s.fail("update", caller, errors.NotFound("historial médico"))
	}

	rec, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return s.fail("update", caller, errors.Store(err))
	}
	if rec == nil {
		return s.fail("update", caller, errors.Store(fmt.Errorf("medical history entry %d missing after update", id)))
	}

	s.events.Emit(ctx, "historial.actualizado", map[string]interface{}{
		"id": id, "actualizado_por": caller.ID,
	})
	s.count("update", "success")
	return model.OK("historial médico actualizado", rec.Detail())
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
		return s.fail("delete", caller, errors.NotFound("historial médico"))
	}
	if !sc.AllowsOwner(rec.CreatedBy) {
		return s.fail("delete", caller, errors.Authorization("acceso denegado"))
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.fail("delete", caller, errors.Store(err))
	}
	if !ok {
		return s.fail("delete", caller, errors.NotFound("historial médico"))
	}

	s.events.Emit(ctx, "historial.eliminado", map[string]interface{}{
		"id": id, "eliminado_por": caller.ID,
	})
	s.count("delete", "success")
	return model.OK("historial médico eliminado", nil)
}

func (s *Service) fail(operation string, caller model.Caller, err error) *model.Response {
	if errors.IsStore(err) {
		s.logger.Error(err, "medical history operation failed", "operation", operation, "caller_id", caller.ID)
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
