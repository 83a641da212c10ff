// Package password provides password hashing helpers for the auth domain.
package password

import "golang.org/x/crypto/bcrypt"

const hashCost = 12

// Hash derives a bcrypt hash from a plaintext password.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare checks a plaintext password against a stored hash.
func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
