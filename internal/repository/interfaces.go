package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/asistia/care-api/internal/model"
)

// All repository interfaces in one file.
//
// Conventions shared by every repository:
//   - GetByID returns (nil, nil) when the row does not exist; errors
//     are reserved for genuine store failures.
//   - Update and Delete report "no row matched" as (false, nil).
//   - Create inserts exactly the fields given and returns the
//     generated id. Creates that reference other rows check them
//     inside the insert transaction and return the matching sentinel
//     from errors.go when a reference is gone.
//   - Search and Count take the same FilterSet and are built from the
//     same predicate table, so they can never disagree.
type (
	MedicalHistoryRepository interface {
		GetByID(ctx context.Context, id int64) (*model.MedicalHistory, error)
		List(ctx context.Context, page model.Page) ([]*model.MedicalHistory, error)
		ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.MedicalHistory, error)
		Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.MedicalHistory, error)
		Count(ctx context.Context, filters model.FilterSet) (int64, error)
		Create(ctx context.Context, fields map[string]interface{}) (int64, error)
		Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error)
		Delete(ctx context.Context, id int64) (bool, error)
		Exists(ctx context.Context, id int64) (bool, error)
	}

	PrescriptionRepository interface {
		GetByID(ctx context.Context, id int64) (*model.Prescription, error)
		List(ctx context.Context, page model.Page) ([]*model.Prescription, error)
		ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Prescription, error)
		ListByAuthor(ctx context.Context, authorID int64, page model.Page) ([]*model.Prescription, error)
		Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Prescription, error)
		Count(ctx context.Context, filters model.FilterSet) (int64, error)
		Create(ctx context.Context, fields map[string]interface{}) (int64, error)
		Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error)
		Delete(ctx context.Context, id int64) (bool, error)
		Exists(ctx context.Context, id int64) (bool, error)
		HistoryExists(ctx context.Context, historyID int64) (bool, error)
	}

	IndicationRepository interface {
		GetByID(ctx context.Context, id int64) (*model.Indication, error)
		List(ctx context.Context, page model.Page) ([]*model.Indication, error)
		ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Indication, error)
		ListByAuthor(ctx context.Context, authorID int64, page model.Page) ([]*model.Indication, error)
		Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Indication, error)
		Count(ctx context.Context, filters model.FilterSet) (int64, error)
		Create(ctx context.Context, fields map[string]interface{}) (int64, error)
		Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error)
		Delete(ctx context.Context, id int64) (bool, error)
		Exists(ctx context.Context, id int64) (bool, error)
	}

	PatientRepository interface {
		GetByID(ctx context.Context, id int64) (*model.Patient, error)
		List(ctx context.Context, page model.Page) ([]*model.Patient, error)
		Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Patient, error)
		Count(ctx context.Context, filters model.FilterSet) (int64, error)
		Create(ctx context.Context, fields map[string]interface{}) (int64, error)
		Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error)
		Delete(ctx context.Context, id int64) (bool, error)
		Exists(ctx context.Context, id int64) (bool, error)
		HasAssignments(ctx context.Context, id int64) (bool, error)
	}

	ProfessionalRepository interface {
		GetByID(ctx context.Context, id int64) (*model.Professional, error)
		List(ctx context.Context, page model.Page) ([]*model.Professional, error)
		Create(ctx context.Context, fields map[string]interface{}) (int64, error)
		Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error)
		Delete(ctx context.Context, id int64) (bool, error)
		Exists(ctx context.Context, id int64) (bool, error)
	}

	UserRepository interface {
		GetByID(ctx context.Context, id int64) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		ListByRole(ctx context.Context, role model.Role, page model.Page) ([]*model.User, error)
		Create(ctx context.Context, fields map[string]interface{}) (int64, error)
		Exists(ctx context.Context, id int64) (bool, error)
		HasRole(ctx context.Context, id int64, roles ...model.Role) (bool, error)
	}

	// AssignmentRepository manages the professional/physician caseload
	// pairs. A (user, patient) pair is unique.
	AssignmentRepository interface {
		Create(ctx context.Context, userID, patientID int64) (int64, error)
		Delete(ctx context.Context, userID, patientID int64) (bool, error)
		ListByUser(ctx context.Context, userID int64, page model.Page) ([]*model.Assignment, error)
		ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Assignment, error)
		ListPatientIDs(ctx context.Context, userID int64) ([]int64, error)
		Exists(ctx context.Context, userID, patientID int64) (bool, error)
	}

	// CaregiverAssignmentRepository manages caregiver visibility
	// grants. ListPatientIDs is the source of truth for caregiver
	// scopes and is queried fresh on every request.
	CaregiverAssignmentRepository interface {
		Create(ctx context.Context, patientID, caregiverID, actorID int64) (int64, error)
		Delete(ctx context.Context, patientID, caregiverID int64) (bool, error)
		ListByCaregiver(ctx context.Context, caregiverID int64, page model.Page) ([]*model.CaregiverAssignment, error)
		ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.CaregiverAssignment, error)
		ListPatientIDs(ctx context.Context, caregiverID int64) ([]int64, error)
		Exists(ctx context.Context, patientID, caregiverID int64) (bool, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
