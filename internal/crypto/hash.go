package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// hashCost matches bcrypt's default work factor. Hashing is intentionally
// expensive; it is the only CPU-bound suspension point in the request path.
const hashCost = bcrypt.DefaultCost

// HashPassword hashes a password with bcrypt. Cleartext passwords are
// never stored or logged.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether a cleartext password matches the stored
// bcrypt hash. A mismatch is not an error; errors indicate a corrupt or
// foreign hash encoding.
func VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
