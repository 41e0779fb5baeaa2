package portal

import (
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

const hashCost = 14

// HashPassword generates a bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	return string(bytes), nil
}

// ComparePasswordAndHash checks a plaintext password against a stored
// hash. The comparison is constant time; any failure collapses into the
// generic credentials error.
func ComparePasswordAndHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}
