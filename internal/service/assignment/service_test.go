package assignment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/validator"
)

type pair struct{ a, b int64 }

type fakeAssignmentRepo struct {
	seq   int64
	pairs map[pair]int64
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{pairs: map[pair]int64{}}
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, userID, patientID int64) (int64, error) {
	key := pair{userID, patientID}
	if _, ok := f.pairs[key]; ok {
		return 0, repository.ErrDuplicateAssignment
	}
	f.seq++
	f.pairs[key] = f.seq
	return f.seq, nil
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, userID, patientID int64) (bool, error) {
	key := pair{userID, patientID}
	if _, ok := f.pairs[key]; !ok {
		return false, nil
	}
	delete(f.pairs, key)
	return true, nil
}

func (f *fakeAssignmentRepo) ListByUser(ctx context.Context, userID int64, page model.Page) ([]*model.Assignment, error) {
	var out []*model.Assignment
	for k, id := range f.pairs {
		if k.a == userID {
			out = append(out, &model.Assignment{ID: id, UserID: k.a, PatientID: k.b})
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Assignment, error) {
	var out []*model.Assignment
	for k, id := range f.pairs {
		if k.b == patientID {
			out = append(out, &model.Assignment{ID: id, UserID: k.a, PatientID: k.b})
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) ListPatientIDs(ctx context.Context, userID int64) ([]int64, error) {
	var out []int64
	for k := range f.pairs {
		if k.a == userID {
			out = append(out, k.b)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Exists(ctx context.Context, userID, patientID int64) (bool, error) {
	_, ok := f.pairs[pair{userID, patientID}]
	return ok, nil
}

type fakeGrantRepo struct {
	seq     int64
	pairs   map[pair]int64 // patient, caregiver
	missing bool
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{pairs: map[pair]int64{}}
}

func (f *fakeGrantRepo) Create(ctx context.Context, patientID, caregiverID, actorID int64) (int64, error) {
	if f.missing {
		return 0, repository.ErrUserMissing
	}
	key := pair{patientID, caregiverID}
	if _, ok := f.pairs[key]; ok {
		return 0, repository.ErrDuplicateAssignment
	}
	f.seq++
	f.pairs[key] = f.seq
	return f.seq, nil
}

func (f *fakeGrantRepo) Delete(ctx context.Context, patientID, caregiverID int64) (bool, error) {
	key := pair{patientID, caregiverID}
	if _, ok := f.pairs[key]; !ok {
		return false, nil
	}
	delete(f.pairs, key)
	return true, nil
}

func (f *fakeGrantRepo) ListByCaregiver(ctx context.Context, caregiverID int64, page model.Page) ([]*model.CaregiverAssignment, error) {
	var out []*model.CaregiverAssignment
	for k, id := range f.pairs {
		if k.b == caregiverID {
			out = append(out, &model.CaregiverAssignment{ID: id, PatientID: k.a, CaregiverID: k.b})
		}
	}
	return out, nil
}

func (f *fakeGrantRepo) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.CaregiverAssignment, error) {
	var out []*model.CaregiverAssignment
	for k, id := range f.pairs {
		if k.a == patientID {
			out = append(out, &model.CaregiverAssignment{ID: id, PatientID: k.a, CaregiverID: k.b})
		}
	}
	return out, nil
}

func (f *fakeGrantRepo) ListPatientIDs(ctx context.Context, caregiverID int64) ([]int64, error) {
	var out []int64
	for k := range f.pairs {
		if k.b == caregiverID {
			out = append(out, k.a)
		}
	}
	return out, nil
}

func (f *fakeGrantRepo) Exists(ctx context.Context, patientID, caregiverID int64) (bool, error) {
	_, ok := f.pairs[pair{patientID, caregiverID}]
	return ok, nil
}

type fakePatientRepo struct {
	names map[int64]string
}

func (f *fakePatientRepo) GetByID(ctx context.Context, id int64) (*model.Patient, error) {
	name, ok := f.names[id]
	if !ok {
		return nil, nil
	}
	return &model.Patient{ID: id, Name: name}, nil
}
func (f *fakePatientRepo) List(ctx context.Context, page model.Page) ([]*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Patient, error) {
	return nil, nil
}
func (f *fakePatientRepo) Count(ctx context.Context, filters model.FilterSet) (int64, error) {
	return 0, nil
}
func (f *fakePatientRepo) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	return 0, nil
}
func (f *fakePatientRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	return false, nil
}
func (f *fakePatientRepo) Delete(ctx context.Context, id int64) (bool, error) { return false, nil }
func (f *fakePatientRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := f.names[id]
	return ok, nil
}
func (f *fakePatientRepo) HasAssignments(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

var (
	admin     = model.Caller{ID: 1, Role: model.RoleAdministrador}
	physician = model.Caller{ID: 5, Role: model.RoleMedico}
	caregiver = model.Caller{ID: 3, Role: model.RoleCuidador}
)

func newTestService(assignments *fakeAssignmentRepo, grants *fakeGrantRepo) *Service {
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	patients := &fakePatientRepo{names: map[int64]string{10: "María Pérez"}}
	return NewService(assignments, grants, patients, validator.New(), nil, log)
}

func TestCreateAdminOnly(t *testing.T) {
	svc := newTestService(newFakeAssignmentRepo(), newFakeGrantRepo())
	req := &model.CreateAssignmentRequest{UserID: 5, PatientID: 10}

	resp := svc.Create(context.Background(), physician, req)
	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)

	resp = svc.Create(context.Background(), admin, req)
	assert.True(t, resp.Success, resp.Message)
}

func TestCreateDuplicate(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newTestService(repo, newFakeGrantRepo())
	req := &model.CreateAssignmentRequest{UserID: 5, PatientID: 10}

	require.True(t, svc.Create(context.Background(), admin, req).Success)

	resp := svc.Create(context.Background(), admin, req)
	assert.False(t, resp.Success)
	assert.Equal(t, "la asignación ya existe", resp.Message)
}

func TestDeleteMissing(t *testing.T) {
	svc := newTestService(newFakeAssignmentRepo(), newFakeGrantRepo())

	resp := svc.Delete(context.Background(), admin, 5, 10)

	assert.False(t, resp.Success)
	assert.Equal(t, "asignación no encontrada", resp.Message)
}

func TestListByUserOwnCaseloadOnly(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.Create(context.Background(), 5, 10)
	repo.Create(context.Background(), 7, 20)
	svc := newTestService(repo, newFakeGrantRepo())

	// Staff see their own caseload.
	resp := svc.ListByUser(context.Background(), physician, 5, model.Page{Limit: 20})
	require.True(t, resp.Success, resp.Message)
	assert.Len(t, resp.Data.([]*model.Assignment), 1)

	// Not someone else's.
	resp = svc.ListByUser(context.Background(), physician, 7, model.Page{Limit: 20})
	assert.False(t, resp.Success)

	// Administrators see anyone's.
	resp = svc.ListByUser(context.Background(), admin, 7, model.Page{Limit: 20})
	assert.True(t, resp.Success, resp.Message)
}

func TestCaregiverGrantLifecycle(t *testing.T) {
	grants := newFakeGrantRepo()
	svc := newTestService(newFakeAssignmentRepo(), grants)

	resp := svc.CreateCaregiverGrant(context.Background(), admin, &model.CreateCaregiverAssignmentRequest{
		CaregiverID: 3, PatientID: 10,
	})
	require.True(t, resp.Success, resp.Message)

	ids, _ := grants.ListPatientIDs(context.Background(), 3)
	assert.Equal(t, []int64{10}, ids)

	resp = svc.DeleteCaregiverGrant(context.Background(), admin, 10, 3)
	require.True(t, resp.Success, resp.Message)

	ids, _ = grants.ListPatientIDs(context.Background(), 3)
	assert.Empty(t, ids)
}

func TestCaregiverGrantUnknownUser(t *testing.T) {
	grants := newFakeGrantRepo()
	grants.missing = true
	svc := newTestService(newFakeAssignmentRepo(), grants)

	resp := svc.CreateCaregiverGrant(context.Background(), admin, &model.CreateCaregiverAssignmentRequest{
		CaregiverID: 99, PatientID: 10,
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "el usuario no existe", resp.Message)
}

func TestCaregiverSeesOwnGrantsOnly(t *testing.T) {
	grants := newFakeGrantRepo()
	grants.Create(context.Background(), 10, 3, 1)
	svc := newTestService(newFakeAssignmentRepo(), grants)

	resp := svc.ListByCaregiver(context.Background(), caregiver, 3, model.Page{Limit: 20})
	assert.True(t, resp.Success, resp.Message)

	resp = svc.ListByCaregiver(context.Background(), caregiver, 4, model.Page{Limit: 20})
	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)
}

func TestCaregiverCannotListPatientStaff(t *testing.T) {
	svc := newTestService(newFakeAssignmentRepo(), newFakeGrantRepo())

	resp := svc.ListByPatient(context.Background(), caregiver, 10, model.Page{Limit: 20})
	assert.False(t, resp.Success)

	resp = svc.ListCaregiversByPatient(context.Background(), caregiver, 10, model.Page{Limit: 20})
	assert.False(t, resp.Success)
}
