package indication

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

type fakeIndicationRepo struct {
	seq      int64
	items    map[int64]*model.Indication
	patients map[int64]bool
	roles    map[int64]model.Role
}

func newFakeIndicationRepo() *fakeIndicationRepo {
	return &fakeIndicationRepo{
		items:    map[int64]*model.Indication{},
		patients: map[int64]bool{},
		roles:    map[int64]model.Role{},
	}
}

func (f *fakeIndicationRepo) GetByID(ctx context.Context, id int64) (*model.Indication, error) {
	i, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (f *fakeIndicationRepo) List(ctx context.Context, page model.Page) ([]*model.Indication, error) {
	return f.Search(ctx, nil, page)
}

func (f *fakeIndicationRepo) ListByPatient(ctx context.Context, patientID int64, page model.Page) ([]*model.Indication, error) {
	return f.Search(ctx, model.FilterSet{model.FilterPatient: patientID}, page)
}

func (f *fakeIndicationRepo) ListByAuthor(ctx context.Context, authorID int64, page model.Page) ([]*model.Indication, error) {
	return f.Search(ctx, model.FilterSet{model.FilterAuthor: authorID}, page)
}

func (f *fakeIndicationRepo) Search(ctx context.Context, filters model.FilterSet, page model.Page) ([]*model.Indication, error) {
	var out []*model.Indication
	for _, i := range f.items {
		if !matches(i, filters) {
			continue
		}
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func matches(i *model.Indication, filters model.FilterSet) bool {
	if v, ok := filters[model.FilterPatient].(int64); ok && i.PatientID != v {
		return false
	}
	if v, ok := filters[model.FilterAuthor].(int64); ok && i.AuthorID != v {
		return false
	}
	if ids, ok := filters[model.FilterPatientSet].([]int64); ok {
		found := false
		for _, id := range ids {
			if i.PatientID == id {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (f *fakeIndicationRepo) Count(ctx context.Context, filters model.FilterSet) (int64, error) {
	items, _ := f.Search(ctx, filters, model.Page{})
	return int64(len(items)), nil
}

// Create mirrors the store contract: the patient and author role
// checks happen atomically with the insert and surface as sentinels.
func (f *fakeIndicationRepo) Create(ctx context.Context, fields map[string]interface{}) (int64, error) {
	if !f.patients[fields["id_paciente"].(int64)] {
		return 0, repository.ErrPatientMissing
	}
	switch f.roles[fields["id_autor"].(int64)] {
	case model.RoleMedico, model.RoleProfesional, model.RoleAdministrador:
	default:
		return 0, repository.ErrAuthorMissing
	}

	f.seq++
	i := &model.Indication{
		ID:          f.seq,
		PatientID:   fields["id_paciente"].(int64),
		AuthorID:    fields["id_autor"].(int64),
		Description: fields["descripcion"].(string),
		Date:        fields["fecha"].(time.Time),
	}
	i.CreatedBy = fields["creado_por"].(int64)
	i.CreatedAt = fields["created_at"].(time.Time)
	f.items[i.ID] = i
	return i.ID, nil
}

func (f *fakeIndicationRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	i, ok := f.items[id]
	if !ok {
		return false, nil
	}
	if v, ok := fields["descripcion"].(string); ok {
		i.Description = v
	}
	if v, ok := fields["fecha"].(time.Time); ok {
		i.Date = v
	}
	if v, ok := fields["updated_at"].(time.Time); ok {
		i.UpdatedAt = &v
	}
	if v, ok := fields["actualizado_por"].(int64); ok {
		i.UpdatedBy = &v
	}
	return true, nil
}

func (f *fakeIndicationRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeIndicationRepo) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok := f.items[id]
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

type nopEmitter struct{}

func (nopEmitter) Emit(ctx context.Context, eventType string, payload interface{}) {}

var (
	physician    = model.Caller{ID: 5, Role: model.RoleMedico}
	professional = model.Caller{ID: 6, Role: model.RoleProfesional}
	admin        = model.Caller{ID: 1, Role: model.RoleAdministrador}
	caregiver    = model.Caller{ID: 3, Role: model.RoleCuidador}
)

func newTestService(repo *fakeIndicationRepo, caregivers *fakeCaregiverRepo) *Service {
	if caregivers == nil {
		caregivers = &fakeCaregiverRepo{}
	}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	return NewService(repo, scope.NewResolver(caregivers), validator.New(), nopEmitter{}, log, nil)
}

func seedIndication(repo *fakeIndicationRepo, patientID, authorID int64) int64 {
	repo.patients[patientID] = true
	if _, ok := repo.roles[authorID]; !ok {
		repo.roles[authorID] = model.RoleProfesional
	}
	id, _ := repo.Create(context.Background(), map[string]interface{}{
		"id_paciente": patientID,
		"id_autor":    authorID,
		"descripcion": "control de presión dos veces al día",
		"fecha":       time.Now(),
		"creado_por":  authorID,
		"created_at":  time.Now(),
	})
	return id
}

func TestGetCaregiverOffScopeDenied(t *testing.T) {
	repo := newFakeIndicationRepo()
	id := seedIndication(repo, 20, 5)
	svc := newTestService(repo, &fakeCaregiverRepo{patientIDs: map[int64][]int64{3: {10}}})

	resp := svc.Get(context.Background(), caregiver, id)

	// Off-scope reads are an explicit denial, never an empty success.
	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)
}

func TestGetCaregiverInScope(t *testing.T) {
	repo := newFakeIndicationRepo()
	id := seedIndication(repo, 10, 5)
	svc := newTestService(repo, &fakeCaregiverRepo{patientIDs: map[int64][]int64{3: {10}}})

	resp := svc.Get(context.Background(), caregiver, id)

	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, int64(10), resp.Data.(*model.IndicationDetail).Patient.ID)
}

func TestCreateProfessionalAuthor(t *testing.T) {
	repo := newFakeIndicationRepo()
	repo.patients[10] = true
	repo.roles[6] = model.RoleProfesional
	svc := newTestService(repo, nil)

	resp := svc.Create(context.Background(), professional, &model.CreateIndicationRequest{
		PatientID:   10,
		Description: "dieta hiposódica",
	})

	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, int64(6), resp.Data.(*model.IndicationDetail).Author.ID)
}

func TestCreateAuthorWithoutAuthorizedRole(t *testing.T) {
	repo := newFakeIndicationRepo()
	repo.patients[10] = true
	repo.roles[3] = model.RoleCuidador
	svc := newTestService(repo, nil)

	resp := svc.Create(context.Background(), admin, &model.CreateIndicationRequest{
		PatientID:   10,
		AuthorID:    3,
		Description: "algo",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "el autor indicado no existe o no tiene un rol autorizado", resp.Message)
	assert.Empty(t, repo.items)
}

func TestCreateMissingPatient(t *testing.T) {
	repo := newFakeIndicationRepo()
	repo.roles[5] = model.RoleMedico
	svc := newTestService(repo, nil)

	resp := svc.Create(context.Background(), physician, &model.CreateIndicationRequest{
		PatientID:   999999,
		Description: "algo",
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "el paciente no existe", resp.Message)
	assert.Empty(t, repo.items)
}

func TestCreateRejectsImpersonation(t *testing.T) {
	repo := newFakeIndicationRepo()
	repo.patients[10] = true
	repo.roles[5] = model.RoleMedico
	repo.roles[6] = model.RoleProfesional
	svc := newTestService(repo, nil)

	resp := svc.Create(context.Background(), professional, &model.CreateIndicationRequest{
		PatientID:   10,
		AuthorID:    5,
		Description: "algo",
	})

	assert.False(t, resp.Success)
}

func TestCreateAdminOnBehalf(t *testing.T) {
	repo := newFakeIndicationRepo()
	repo.patients[10] = true
	repo.roles[6] = model.RoleProfesional
	svc := newTestService(repo, nil)

	resp := svc.Create(context.Background(), admin, &model.CreateIndicationRequest{
		PatientID:   10,
		AuthorID:    6,
		Description: "curación diaria",
	})

	require.True(t, resp.Success, resp.Message)
	detail := resp.Data.(*model.IndicationDetail)
	assert.Equal(t, int64(6), detail.Author.ID)
	assert.Equal(t, int64(1), detail.Audit.CreatedBy)
}

func TestUpdateOwnershipEnforced(t *testing.T) {
	repo := newFakeIndicationRepo()
	id := seedIndication(repo, 10, 6)
	svc := newTestService(repo, nil)

	desc := "indicación revisada"

	resp := svc.Update(context.Background(), physician, id, &model.UpdateIndicationRequest{Description: &desc})
	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)

	resp = svc.Update(context.Background(), professional, id, &model.UpdateIndicationRequest{Description: &desc})
	require.True(t, resp.Success, resp.Message)

	resp = svc.Update(context.Background(), admin, id, &model.UpdateIndicationRequest{Description: &desc})
	assert.True(t, resp.Success, resp.Message)
}

func TestUpdateNothingToDo(t *testing.T) {
	repo := newFakeIndicationRepo()
	id := seedIndication(repo, 10, 6)
	svc := newTestService(repo, nil)

	resp := svc.Update(context.Background(), professional, id, &model.UpdateIndicationRequest{})

	assert.False(t, resp.Success)
	assert.Equal(t, "nada que actualizar", resp.Message)
}

func TestDeleteByAdmin(t *testing.T) {
	repo := newFakeIndicationRepo()
	id := seedIndication(repo, 10, 6)
	svc := newTestService(repo, nil)

	resp := svc.Delete(context.Background(), admin, id)

	require.True(t, resp.Success, resp.Message)
	assert.Empty(t, repo.items)
}

func TestListByPatientCaregiverScope(t *testing.T) {
	repo := newFakeIndicationRepo()
	seedIndication(repo, 10, 6)
	seedIndication(repo, 20, 6)
	svc := newTestService(repo, &fakeCaregiverRepo{patientIDs: map[int64][]int64{3: {10}}})

	resp := svc.ListByPatient(context.Background(), caregiver, 10, model.Page{Limit: 20})
	require.True(t, resp.Success, resp.Message)
	items := resp.Data.([]*model.IndicationSummary)
	require.Len(t, items, 1)

	resp = svc.ListByPatient(context.Background(), caregiver, 20, model.Page{Limit: 20})
	assert.False(t, resp.Success)
	assert.Equal(t, "acceso denegado", resp.Message)
}

func TestListByAuthor(t *testing.T) {
	repo := newFakeIndicationRepo()
	seedIndication(repo, 10, 6)
	seedIndication(repo, 10, 5)
	svc := newTestService(repo, nil)

	resp := svc.ListByAuthor(context.Background(), admin, 6, model.Page{Limit: 20})

	require.True(t, resp.Success, resp.Message)
	require.NotNil(t, resp.Total)
	assert.Equal(t, int64(1), *resp.Total)
}
