package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationJoinsViolations(t *testing.T) {
	err := Validation("el campo a es obligatorio", "el campo b es obligatorio")

	assert.True(t, IsValidation(err))
	assert.Equal(t, "el campo a es obligatorio; el campo b es obligatorio", err.Message)
	assert.Len(t, err.Violations, 2)
}

func TestValidationSingleViolation(t *testing.T) {
	err := Validation("nada que actualizar")
	assert.Equal(t, "nada que actualizar", err.Message)
}

func TestAuthorizationDefaultMessage(t *testing.T) {
	assert.Equal(t, "acceso denegado", Authorization("").Message)
	assert.Equal(t, "otro mensaje", Authorization("otro mensaje").Message)
}

func TestNotFoundFormatsResource(t *testing.T) {
	err := NotFound("historial médico")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "historial médico no encontrado", err.Message)
}

func TestStoreMasksCause(t *testing.T) {
	cause := fmt.Errorf("pq: connection refused")
	err := Store(cause)

	assert.True(t, IsStore(err))
	assert.Equal(t, "error interno del servidor", PublicMessage(err))
	// The cause stays reachable for logging.
	assert.ErrorIs(t, err, cause)
}

func TestPublicMessageUnknownError(t *testing.T) {
	assert.Equal(t, "error interno del servidor", PublicMessage(fmt.Errorf("boom")))
}

func TestKindPredicatesDisjoint(t *testing.T) {
	err := Conflict("la asignación ya existe", nil)
	assert.True(t, IsConflict(err))
	assert.False(t, IsValidation(err))
	assert.False(t, IsAuthorization(err))
	assert.False(t, IsStore(err))
}
