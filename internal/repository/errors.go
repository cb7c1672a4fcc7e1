package repository

import "errors"

// Sentinels the store implementations return for business conditions
// the services translate into envelope messages. They are part of the
// repository contract, not of any one backend.
var (
	// ErrPatientAssigned refuses a patient delete while assignment rows
	// still reference the patient.
	ErrPatientAssigned = errors.New("patient has active assignments")

	// ErrDuplicateAssignment reports an already existing (user, patient)
	// or (caregiver, patient) pair.
	ErrDuplicateAssignment = errors.New("assignment pair already exists")

	ErrPatientMissing = errors.New("patient does not exist")
	ErrUserMissing    = errors.New("user does not exist")

	// ErrHistoryMissing reports a prescription whose historial_medico row
	// is gone by the time the insert runs.
	ErrHistoryMissing = errors.New("medical history entry does not exist")

	// ErrAuthorMissing reports an authoring user that does not exist or
	// does not hold a role allowed to sign the record.
	ErrAuthorMissing = errors.New("author does not exist or lacks an authorized role")
)
