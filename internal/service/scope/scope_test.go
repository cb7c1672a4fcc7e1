package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asistia/care-api/internal/model"
	apperrors "github.com/asistia/care-api/pkg/errors"
)

type fakeCaregiverRepo struct {
	patientIDs []int64
	err        error
	calls      int
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
	f.calls++
	return f.patientIDs, f.err
}
func (f *fakeCaregiverRepo) Exists(ctx context.Context, patientID, caregiverID int64) (bool, error) {
	return false, nil
}

func TestResolveAdministratorUnrestricted(t *testing.T) {
	r := NewResolver(&fakeCaregiverRepo{})
	caller := model.Caller{ID: 1, Role: model.RoleAdministrador}

	for _, op := range []Operation{OpRead, OpCreate, OpUpdate, OpDelete} {
		sc, err := r.Resolve(context.Background(), caller, op)
		require.NoError(t, err)
		assert.Equal(t, KindUnrestricted, sc.Kind)
		assert.True(t, sc.AllowsPatient(999))
		assert.True(t, sc.AllowsOwner(999))
	}
}

func TestResolveStaffOwnerScopedMutations(t *testing.T) {
	r := NewResolver(&fakeCaregiverRepo{})

	for _, role := range []model.Role{model.RoleMedico, model.RoleProfesional} {
		caller := model.Caller{ID: 5, Role: role}

		read, err := r.Resolve(context.Background(), caller, OpRead)
		require.NoError(t, err)
		assert.Equal(t, KindUnrestricted, read.Kind)

		create, err := r.Resolve(context.Background(), caller, OpCreate)
		require.NoError(t, err)
		assert.Equal(t, KindUnrestricted, create.Kind)

		update, err := r.Resolve(context.Background(), caller, OpUpdate)
		require.NoError(t, err)
		assert.Equal(t, KindOwner, update.Kind)
		assert.True(t, update.AllowsOwner(5))
		assert.False(t, update.AllowsOwner(7))

		del, err := r.Resolve(context.Background(), caller, OpDelete)
		require.NoError(t, err)
		assert.Equal(t, KindOwner, del.Kind)
	}
}

func TestResolveCaregiverReadsPatientSet(t *testing.T) {
	repo := &fakeCaregiverRepo{patientIDs: []int64{10, 11}}
	r := NewResolver(repo)
	caller := model.Caller{ID: 3, Role: model.RoleCuidador}

	sc, err := r.Resolve(context.Background(), caller, OpRead)
	require.NoError(t, err)
	assert.Equal(t, KindPatients, sc.Kind)
	assert.True(t, sc.AllowsPatient(10))
	assert.True(t, sc.AllowsPatient(11))
	assert.False(t, sc.AllowsPatient(20))
	assert.False(t, sc.AllowsOwner(3))
}

func TestResolveCaregiverMutationsDenied(t *testing.T) {
	r := NewResolver(&fakeCaregiverRepo{patientIDs: []int64{10}})
	caller := model.Caller{ID: 3, Role: model.RoleCuidador}

	for _, op := range []Operation{OpCreate, OpUpdate, OpDelete} {
		_, err := r.Resolve(context.Background(), caller, op)
		require.Error(t, err)
		assert.True(t, apperrors.IsAuthorization(err))
	}
}

// The assignment set must be read again on every resolution, so a
// revoked grant stops working on the caregiver's next request.
func TestResolveCaregiverSetQueriedPerCall(t *testing.T) {
	repo := &fakeCaregiverRepo{patientIDs: []int64{10}}
	r := NewResolver(repo)
	caller := model.Caller{ID: 3, Role: model.RoleCuidador}

	sc, err := r.Resolve(context.Background(), caller, OpRead)
	require.NoError(t, err)
	assert.True(t, sc.AllowsPatient(10))

	repo.patientIDs = nil
	sc, err = r.Resolve(context.Background(), caller, OpRead)
	require.NoError(t, err)
	assert.False(t, sc.AllowsPatient(10))

	assert.Equal(t, 2, repo.calls)
}

func TestResolveCaregiverStoreError(t *testing.T) {
	r := NewResolver(&fakeCaregiverRepo{err: errors.New("connection refused")})
	caller := model.Caller{ID: 3, Role: model.RoleCuidador}

	_, err := r.Resolve(context.Background(), caller, OpRead)
	require.Error(t, err)
	assert.True(t, apperrors.IsStore(err))
}

func TestResolveUnknownRoleDenied(t *testing.T) {
	r := NewResolver(&fakeCaregiverRepo{})
	_, err := r.Resolve(context.Background(), model.Caller{ID: 1, Role: "Visitante"}, OpRead)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthorization(err))
}
