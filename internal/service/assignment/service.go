package assignment

import (
	"context"
	stderrors "errors"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/internal/service/notification"
	"github.com/asistia/care-api/pkg/errors"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/validator"
)

// Service manages the two assignment kinds: staff caseload links and
// caregiver visibility grants. All mutations are administrator-only;
// caregiver grants feed the scope resolver, so creating or deleting
// one takes effect on the caregiver's next request.
type Service struct {
	assignments repository.AssignmentRepository
	caregivers  repository.CaregiverAssignmentRepository
	patients    repository.PatientRepository
	validate    *validator.Validator
	notifier    *notification.Service
	logger      *logger.Logger
}

func NewService(
	assignments repository.AssignmentRepository,
	caregivers repository.CaregiverAssignmentRepository,
	patients repository.PatientRepository,
	validate *validator.Validator,
	notifier *notification.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		assignments: assignments,
		caregivers:  caregivers,
		patients:    patients,
		validate:    validate,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *Service) Create(ctx context.Context, caller model.Caller, req *model.CreateAssignmentRequest) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail(appErr)
	}

	id, err := s.assignments.Create(ctx, req.UserID, req.PatientID)
	if err != nil {
		return s.fail(s.translate(err))
	}

	return model.OK("asignación creada", map[string]interface{}{
		"id": id, "id_usuario": req.UserID, "id_paciente": req.PatientID,
	})
}

func (s *Service) Delete(ctx context.Context, caller model.Caller, userID, patientID int64) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}

	ok, err := s.assignments.Delete(ctx, userID, patientID)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if !ok {
		return s.fail(errors.NotFoundMsg("asignación no encontrada"))
	}
	return model.OK("asignación eliminada", nil)
}

func (s *Service) ListByUser(ctx context.Context, caller model.Caller, userID int64, page model.Page) *model.Response {
	if !s.canReadCaseload(caller, userID) {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if !page.Valid() {
		return s.fail(errors.Validation("parámetros de paginación inválidos"))
	}

	items, err := s.assignments.ListByUser(ctx, userID, page)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	return model.OK("asignaciones obtenidas", items)
}

func (s *Service) ListByPatient(ctx context.Context, caller model.Caller, patientID int64, page model.Page) *model.Response {
	if caller.Role == model.RoleCuidador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if !page.Valid() {
		return s.fail(errors.Validation("parámetros de paginación inválidos"))
	}

	items, err := s.assignments.ListByPatient(ctx, patientID, page)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	return model.OK("asignaciones obtenidas", items)
}

// CreateCaregiverGrant records the administrator who made the grant and
// notifies the caregiver by email, best-effort.
func (s *Service) CreateCaregiverGrant(ctx context.Context, caller model.Caller, req *model.CreateCaregiverAssignmentRequest) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if appErr := s.validate.Validate(req); appErr != nil {
		return s.fail(appErr)
	}

	id, err := s.caregivers.Create(ctx, req.PatientID, req.CaregiverID, caller.ID)
	if err != nil {
		return s.fail(s.translate(err))
	}

	if s.notifier != nil {
		patientName := ""
		if p, err := s.patients.GetByID(ctx, req.PatientID); err == nil && p != nil {
			patientName = p.Name
		}
		s.notifier.NotifyCaregiverAssigned(ctx, req.CaregiverID, patientName)
	}

	return model.OK("asignación de cuidador creada", map[string]interface{}{
		"id": id, "id_cuidador": req.CaregiverID, "id_paciente": req.PatientID,
	})
}

func (s *Service) DeleteCaregiverGrant(ctx context.Context, caller model.Caller, patientID, caregiverID int64) *model.Response {
	if caller.Role != model.RoleAdministrador {
		return s.fail(errors.Authorization("acceso denegado"))
	}

	ok, err := s.caregivers.Delete(ctx, patientID, caregiverID)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	if !ok {
		return s.fail(errors.NotFoundMsg("asignación de cuidador no encontrada"))
	}
	return model.OK("asignación de cuidador eliminada", nil)
}

func (s *Service) ListByCaregiver(ctx context.Context, caller model.Caller, caregiverID int64, page model.Page) *model.Response {
	if caller.Role != model.RoleAdministrador && caller.ID != caregiverID {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if !page.Valid() {
		return s.fail(errors.Validation("parámetros de paginación inválidos"))
	}

	items, err := s.caregivers.ListByCaregiver(ctx, caregiverID, page)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	return model.OK("asignaciones de cuidador obtenidas", items)
}

func (s *Service) ListCaregiversByPatient(ctx context.Context, caller model.Caller, patientID int64, page model.Page) *model.Response {
	if caller.Role == model.RoleCuidador {
		return s.fail(errors.Authorization("acceso denegado"))
	}
	if !page.Valid() {
		return s.fail(errors.Validation("parámetros de paginación inválidos"))
	}

	items, err := s.caregivers.ListByPatient(ctx, patientID, page)
	if err != nil {
		return s.fail(errors.Store(err))
	}
	return model.OK("asignaciones de cuidador obtenidas", items)
}

// canReadCaseload lets staff see their own caseload and administrators
// see anyone's.
func (s *Service) canReadCaseload(caller model.Caller, userID int64) bool {
	if caller.Role == model.RoleAdministrador {
		return true
	}
	return (caller.Role == model.RoleMedico || caller.Role == model.RoleProfesional) && caller.ID == userID
}

func (s *Service) translate(err error) error {
	switch {
	case stderrors.Is(err, repository.ErrDuplicateAssignment):
		return errors.Conflict("la asignación ya existe", err)
	case stderrors.Is(err, repository.ErrPatientMissing):
		return errors.NotFoundMsg("el paciente no existe")
	case stderrors.Is(err, repository.ErrUserMissing):
		return errors.NotFoundMsg("el usuario no existe")
	default:
		return errors.Store(err)
	}
}

func (s *Service) fail(err error) *model.Response {
	if errors.IsStore(err) {
		s.logger.Error(err, "assignment operation failed")
	}
	return model.Fail(errors.PublicMessage(err))
}
