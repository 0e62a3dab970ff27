package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is deliberately above the bcrypt default. Login is rare
// enough that the extra latency is acceptable.
const passwordHashCost = 14

// HashPassword hashes a cleartext password for storage on the user record
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(h), err
}

// ComparePasswordAndHash checks a cleartext password against a stored hash.
// A mismatch returns ErrMismatchedHashAndPassword so the validator can tell
// a bad password apart from a corrupted hash.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
