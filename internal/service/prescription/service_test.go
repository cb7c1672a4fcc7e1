package prescription

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/internal/service/scope"
	"github.com/asistia/care-api/pkg/logger"
	"github.com/asistia/care-api/pkg/validator"
)

type fakePrescriptionRepo struct {
	seq       int64
	items     map[int64]*model.Prescription
	histories map[int64]int64 // history id -> patient id
	roles     map[int64]model.Role
	vanish    bool // GetByID returns no row, as if deleted concurrently
}

func newFakePrescriptionRepo() *fakePrescriptionRepo {
	return &fakePrescriptionRepo{
		items:     map[int64]*model.Prescription{},
		histories: map[int64]int64{},
		roles:     map[int64]model.Role{},
	}
}

func (f *fakePrescriptionRepo) GetByID(ctx context.Context, id int64) (*model.Prescription, error) {
	p, ok := f.items[id]
	if !ok || f.vanish {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrescriptionRepo) List(ctx context.Context, page model.Page) ([]*model.Prescription, error) {
	return f.Search(ctx, nil, page)
}

func (f *fakePrescriptionRepo) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Prescription, error) {
	return f.Search(ctx, model.FilterSet{model.FilterPatient: patientID}, page)
}

func (f *fakePrescriptionRepo) ListByAuthor(ctx context.Context, authorID int64, page model.Page) ([]*model.Prescription, error) {
	return f.Search(ctx, model.FilterSet{model.FilterAuthor: authorID}, page)
}

func (f *fakePrescriptionRepo) Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Prescription, error) {
	var out []*model.Prescription
	for _, p := range f.items {
		if !matches(p, filters) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func matches(p *model.Prescription, filters model.FilterSet) bool {
	if v, ok := filters[model.FilterAuthor].(int64); ok && p.AuthorID != v {
		return false
	}
	if v, ok := filters[model.FilterPatient].(int64); ok && p.PatientID != v {
		return false
	}
	if ids, ok := filters[model.FilterPatientSet].([]int64); ok {
		found := false
		for _, id := range ids {
			if p.PatientID == id {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *fakePrescriptionRepo) Count(ctx context.Context, filters model.FilterSet) (int64, error) {
	items, _ := f.Search(ctx, filters, model.Page{})
	return int64(len(items)), nil
}

// Create mirrors the store contract: the history and physician checks
// happen atomically with the insert and surface as sentinels.
func (f *fakePrescriptionRepo) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	historyID := fields["id_historial"].(int64)
	if _, ok := f.histories[historyID]; !ok {
		return 0, repository.ErrHistoryMissing
	}
	if f.roles[fields["id_medico"].(int64)] != model.RoleMedico {
		return 0, repository.ErrAuthorMissing
	}

	f.seq++
	p := &model.Prescription{
		ID:        f.seq,
		HistoryID: historyID,
		AuthorID:  fields["id_medico"].(int64),
		Detail:    fields["detalle"].(string),
		Date:      fields["fecha"].(time.Time),
		PatientID: f.histories[historyID],
	}
	p.CreatedBy = fields["creado_por"].(int64)
	p.CreatedAt = fields["created_at"].(time.Time)
	f.items[p.ID] = p
	return p.ID, nil
}

func (f *fakePrescriptionRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	p, ok := f.items[id]
	if !ok {
		return false, nil
	}
	if v, ok := fields["detalle"].(string); ok {
		p.Detail = v
	}
	if v, ok := fields["id_historial"].(int64); ok {
		p.HistoryID = v
		p.PatientID = f.histories[v]
	}
	if v, ok := fields["fecha"].(time.Time); ok {
		p.Date = v
	}
	if v, ok := fields["updated_at"].(time.Time); ok {
		p.UpdatedAt = &v
	}
	if v, ok := fields["actualizado_por"].(int64); ok {
		p.UpdatedBy = &v
	}
	return true, nil
}

func (f *fakePrescriptionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakePrescriptionRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

func (f *fakePrescriptionRepo) HistoryExists(ctx context.Context, historyID int64) (bool, error) {
	_, ok := f.histories[historyID]
	return ok, nil
}

type fakeCaregiverRepo struct {
	patientIDs map[int64][]int64
}

func (f *fakeCaregiverRepo) Create(ctx context.Context, patientID, caregiverID, actorID int64) (int64, error) {
	return 0, nil
}
func (f *fakeCaregiverRepo) Delete(ctx context.Context, patientID, caregiverID int64) (bool, error) {
	return false, nil
}
func (f *fakeCaregiverRepo) ListByCaregiver(ctx context.Context, caregiverID int64, page model.Page) ([]*model.CaregiverAssignment, error) {
	return nil, nil
}
func (f *fakeCaregiverRepo) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.CaregiverAssignment, error) {
	return nil, nil
}
func (f *fakeCaregiverRepo) ListPatientIDs(ctx context.Context, caregiverID int64) ([]int64, error) {
	return f.patientIDs[caregiverID], nil
}
func (f *fakeCaregiverRepo) Exists(ctx context.Context, patientID, caregiverID int64) (bool, error) {
	return false, nil
}

type recordingEmitter struct {
	events []string
}

func (r *recordingEmitter) Emit(ctx context.Context, eventType string, payload interface{}) {
	r.events = append(r.events, eventType)
}

var (
	physicianA = model.Caller{ID: 5, Role: model.RoleMedico}
	physicianB = model.Caller{ID: 7, Role: model.RoleMedico}
	admin      = model.Caller{ID: 1, Role: model.RoleAdministrador}
	caregiver  = model.Caller{ID: 3, Role: model.RoleCuidador}
)

func newTestService(repo *fakePrescriptionRepo, caregivers *fakeCaregiverRepo) (*Service, *recordingEmitter) {
	if caregivers == nil {
		caregivers = &fakeCaregiverRepo{}
	}
	emitter := &recordingEmitter{}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	svc := NewService(repo, scope.NewResolver(caregivers), validator.New(), emitter, log, nil)
	return svc, emitter
}

func seedPrescription(repo *fakePrescriptionRepo, authorID int64) int64 {
	repo.roles[authorID] = model.RoleMedico
	id, _ := repo.Create(context.Background(), map[string]interface{}{
		"id_historial": int64(1),
		"id_medico":    authorID,
		"detalle":      "paracetamol 500mg cada 8h",
		"fecha":        time.Now(),
		"creado_por":   authorID,
		"created_at":   time.Now(),
	})
	return id
}

func TestCreateSetsCallerAsAuthor(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	repo.roles[5] = model.RoleMedico
	svc, emitter := newTestService(repo, nil)

	resp := svc.Create(context.Background(), physicianA, &model.CreatePrescriptionRequest{
		HistoryID: 1,
		Detail:    "ibuprofeno 400mg cada 12h",
	})

	require.True(t, resp.Success, resp.Message)
	detail := resp.Data.(*model.PrescriptionDetail)
	assert.Equal(t, int64(5), detail.Author.ID)
	assert.Equal(t, []string{"receta.creada"}, emitter.events)
}

func TestCreateRejectsImpersonation(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	repo.roles[5] = model.RoleMedico
	repo.roles[7] = model.RoleMedico
	svc, _ := newTestService(repo, nil)

	resp := svc.Create(context.Background(), physicianB, &model.CreatePrescriptionRequest{
		HistoryID: 1,
		AuthorID:  5,
		Detail:    "algo",
	})

	assert.False(t, resp.Success)
}

func TestCreateAdminOnBehalfOfPhysician(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	repo.roles[5] = model.RoleMedico
	svc, _ := newTestService(repo, nil)

	resp := svc.Create(context.Background(), admin, &model.CreatePrescriptionRequest{
		HistoryID: 1,
		AuthorID:  5,
		Detail:    "amoxicilina 500mg",
	})

	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, int64(5), resp.Data.(*model.PrescriptionDetail).Author.ID)
}

func TestCreateMissingHistory(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.roles[5] = model.RoleMedico
	svc, _ := newTestService(repo, nil)

	resp := svc.Create(context.Background(), physicianA, &model.CreatePrescriptionRequest{
		HistoryID: 999999,
		Detail:    "algo",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "el historial médico no existe", resp.Message)
	assert.Empty(t, repo.items)
}

func TestCreateAuthorNotPhysician(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	repo.roles[9] = model.RoleProfesional
	svc, _ := newTestService(repo, nil)

	resp := svc.Create(context.Background(), admin, &model.CreatePrescriptionRequest{
		HistoryID: 1,
		AuthorID:  9,
		Detail:    "algo",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "el médico indicado no existe", resp.Message)
	assert.Empty(t, repo.items)
}

func TestCreateRowGoneBeforeReload(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	repo.roles[5] = model.RoleMedico
	repo.vanish = true
	svc, emitter := newTestService(repo, nil)

	resp := svc.Create(context.Background(), physicianA, &model.CreatePrescriptionRequest{
		HistoryID: 1,
		Detail:    "algo",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "error interno del servidor", resp.Message)
	assert.Empty(t, emitter.events)
}

func TestCreateCaregiverDenied(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	svc, _ := newTestService(repo, &fakeCaregiverRepo{patientIDs: map[int64][]int64{3: {10}}})

	resp := svc.Create(context.Background(), caregiver, &model.CreatePrescriptionRequest{
		HistoryID: 1,
		Detail:    "algo",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)
}

func TestCreateValidationListsEveryViolation(t *testing.T) {
	repo := newFakePrescriptionRepo()
	svc, _ := newTestService(repo, nil)

	resp := svc.Create(context.Background(), physicianA, &model.CreatePrescriptionRequest{})

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "id_historial")
	assert.Contains(t, resp.Message, "detalle")
}

func TestUpdateByOtherPhysicianDenied(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	id := seedPrescription(repo, 5)
	svc, _ := newTestService(repo, nil)

	detail := "dosis corregida"
	resp := svc.Update(context.Background(), physicianB, id, &model.UpdatePrescriptionRequest{Detail: &detail})

	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)
	// The record stays untouched.
	stored, _ := repo.GetByID(context.Background(), id)
	assert.Equal(t, "paracetamol 500mg cada 8h", stored.Detail)
}

func TestUpdateByAuthorSucceeds(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	id := seedPrescription(repo, 5)
	svc, emitter := newTestService(repo, nil)

	detail := "dosis corregida"
	resp := svc.Update(context.Background(), physicianA, id, &model.UpdatePrescriptionRequest{Detail: &detail})

	require.True(t, resp.Success, resp.Message)
	stored, _ := repo.GetByID(context.Background(), id)
	assert.Equal(t, "dosis corregida", stored.Detail)
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, int64(5), *stored.UpdatedBy)
	assert.Contains(t, emitter.events, "receta.actualizada")
}

func TestUpdateByAdminSucceeds(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	id := seedPrescription(repo, 5)
	svc, _ := newTestService(repo, nil)

	detail := "ajuste administrativo"
	resp := svc.Update(context.Background(), admin, id, &model.UpdatePrescriptionRequest{Detail: &detail})

	require.True(t, resp.Success, resp.Message)
	stored, _ := repo.GetByID(context.Background(), id)
	// The author never changes; only the audit actor records the admin.
	assert.Equal(t, int64(5), stored.AuthorID)
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, int64(1), *stored.UpdatedBy)
}

func TestUpdateNothingToDo(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	id := seedPrescription(repo, 5)
	svc, _ := newTestService(repo, nil)

	resp := svc.Update(context.Background(), physicianA, id, &model.UpdatePrescriptionRequest{})

	assert.False(t, resp.Success)
	assert.Equal(t, "nada que actualizar", resp.Message)
}

func TestUpdateMissingRecord(t *testing.T) {
	repo := newFakePrescriptionRepo()
	svc, _ := newTestService(repo, nil)

	detail := "x"
	resp := svc.Update(context.Background(), physicianA, 424242, &model.UpdatePrescriptionRequest{Detail: &detail})

	assert.False(t, resp.Success)
	assert.Equal(t, "receta no encontrada", resp.Message)
}

func TestDeleteOwnershipEnforced(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	id := seedPrescription(repo, 5)
	svc, _ := newTestService(repo, nil)

	resp := svc.Delete(context.Background(), physicianB, id)
	assert.False(t, resp.Success)

	resp = svc.Delete(context.Background(), physicianA, id)
	assert.True(t, resp.Success, resp.Message)
}

func TestGetCaregiverScope(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	inScope := seedPrescription(repo, 5)

	repo.histories[2] = 20
	offScope, _ := repo.Create(context.Background(), map[string]interface{}{
		"id_historial": int64(2),
		"id_medico":    int64(5),
		"detalle":      "otra receta",
		"fecha":        time.Now(),
		"creado_por":   int64(5),
		"created_at":   time.Now(),
	})

	svc, _ := newTestService(repo, &fakeCaregiverRepo{patientIDs: map[int64][]int64{3: {10}}})

	resp := svc.Get(context.Background(), caregiver, inScope)
	assert.True(t, resp.Success, resp.Message)

	resp = svc.Get(context.Background(), caregiver, offScope)
	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)
}

func TestListCaregiverRestrictedToAssignedPatients(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	repo.histories[2] = 20
	seedPrescription(repo, 5)
	repo.Create(context.Background(), map[string]interface{}{
		"id_historial": int64(2),
		"id_medico":    int64(5),
		"detalle":      "otra receta",
		"fecha":        time.Now(),
		"creado_por":   int64(5),
		"created_at":   time.Now(),
	})

	svc, _ := newTestService(repo, &fakeCaregiverRepo{patientIDs: map[int64][]int64{3: {10}}})

	resp := svc.List(context.Background(), caregiver, model.Page{Limit: 20})
	require.True(t, resp.Success, resp.Message)
	items := resp.Data.([]*model.PrescriptionSummary)
	require.Len(t, items, 1)
	assert.Equal(t, int64(10), items[0].PatientID)
	require.NotNil(t, resp.Total)
	assert.Equal(t, int64(1), *resp.Total)
}

func TestListCaregiverRequiresLimit(t *testing.T) {
	repo := newFakePrescriptionRepo()
	svc, _ := newTestService(repo, &fakeCaregiverRepo{patientIDs: map[int64][]int64{3: {10}}})

	resp := svc.List(context.Background(), caregiver, model.Page{})
	assert.False(t, resp.Success)
}

func TestListCaregiverWithoutAssignmentsIsEmpty(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	seedPrescription(repo, 5)
	svc, _ := newTestService(repo, &fakeCaregiverRepo{})

	resp := svc.List(context.Background(), caregiver, model.Page{Limit: 20})
	require.True(t, resp.Success)
	require.NotNil(t, resp.Total)
	assert.Equal(t, int64(0), *resp.Total)
}

func TestListByPatientOffScopeDenied(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	seedPrescription(repo, 5)
	svc, _ := newTestService(repo, &fakeCaregiverRepo{patientIDs: map[int64][]int64{3: {10}}})

	// Assigned patient: allowed.
	resp := svc.ListByPatient(context.Background(), caregiver, 10, model.Page{Limit: 20})
	assert.True(t, resp.Success, resp.Message)

	// Unassigned patient: denied, not an empty success.
	resp = svc.ListByPatient(context.Background(), caregiver, 20, model.Page{Limit: 20})
	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)
}

func TestPaginationMetadata(t *testing.T) {
	repo := newFakePrescriptionRepo()
	repo.histories[1] = 10
	for i := 0; i < 5; i++ {
		seedPrescription(repo, 5)
	}
	svc, _ := newTestService(repo, nil)

	resp := svc.List(context.Background(), physicianA, model.Page{Limit: 2, Offset: 2})
	require.True(t, resp.Success)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasMore)
}
