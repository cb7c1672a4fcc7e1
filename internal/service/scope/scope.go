package scope

import (
	"context"

	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/pkg/errors"
)

// Operation classifies what the caller is about to do. The rule table
// below decides the visible/editable record set per (role, operation).
type Operation int

const (
	OpRead Operation = iota
	OpCreate
	OpUpdate
	OpDelete
)

// Kind discriminates the scope variants.
type Kind int

const (
	// KindUnrestricted places no restriction on the record set.
	KindUnrestricted Kind = iota
	// KindPatients restricts reads to an explicit patient id set.
	KindPatients
	// KindOwner restricts mutations to records the caller authored.
	KindOwner
)

// Scope is the set of records a caller may see or act on.
type Scope struct {
	Kind       Kind
	PatientIDs []int64
	OwnerID    int64

	patientSet map[int64]struct{}
}

func Unrestricted() Scope {
	return Scope{Kind: KindUnrestricted}
}

func RestrictedToPatients(ids []int64) Scope {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Scope{Kind: KindPatients, PatientIDs: ids, patientSet: set}
}

func RestrictedToOwner(ownerID int64) Scope {
	return Scope{Kind: KindOwner, OwnerID: ownerID}
}

// AllowsPatient reports whether records of the given patient are
// visible under this scope.
func (s Scope) AllowsPatient(patientID int64) bool {
	switch s.Kind {
	case KindUnrestricted:
		return true
	case KindPatients:
		_, ok := s.patientSet[patientID]
		return ok
	default:
		return false
	}
}

// AllowsOwner reports whether a record authored by authorID may be
// mutated under this scope.
func (s Scope) AllowsOwner(authorID int64) bool {
	switch s.Kind {
	case KindUnrestricted:
		return true
	case KindOwner:
		return authorID == s.OwnerID
	default:
		return false
	}
}

// Resolver computes scopes from the caller's role and, for caregivers,
// their assignment rows. The assignment set is queried on every call;
// caching it across requests would let a revoked grant keep working.
type Resolver struct {
	caregiverRepo repository.CaregiverAssignmentRepository
}

func NewResolver(caregiverRepo repository.CaregiverAssignmentRepository) *Resolver {
	return &Resolver{caregiverRepo: caregiverRepo}
}

// Resolve implements the rule table:
//
//	role           read            create   update/delete
//	Administrador  unrestricted    allowed  unrestricted
//	Medico         unrestricted    allowed  own records only
//	Profesional    unrestricted    allowed  own records only
//	Cuidador       patient set     denied   denied
func (r *Resolver) Resolve(ctx context.Context, caller model.Caller, op Operation) (Scope, error) {
	switch caller.Role {
	case model.RoleAdministrador:
		return Unrestricted(), nil

	case model.RoleMedico, model.RoleProfesional:
		if op == OpUpdate || op == OpDelete {
			return RestrictedToOwner(caller.ID), nil
		}
		return Unrestricted(), nil

	case model.RoleCuidador:
		if op != OpRead {
			return Scope{}, errors.Authorization("acceso denegado")
		}
		ids, err := r.caregiverRepo.ListPatientIDs(ctx, caller.ID)
		if err != nil {
			return Scope{}, errors.Store(err)
		}
		return RestrictedToPatients(ids), nil

	default:
		return Scope{}, errors.Authorization("rol no reconocido")
	}
}
