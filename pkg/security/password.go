package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher produces the password_hash stored on user accounts.
// Tokens are issued by the identity provider, not here, so this API
// only writes hashes; verification happens on the issuing side.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed hasher. An out-of-range cost
// falls back to the bcrypt default.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}
