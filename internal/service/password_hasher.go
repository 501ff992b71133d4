package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost es el factor de coste de bcrypt para todos los hashes nuevos.
const PasswordCost = 10

// maxPasswordBytes es el limite de entrada de bcrypt.
const maxPasswordBytes = 72

var ErrHashing = errors.New("password hashing failed")

// PasswordHasher produce y verifica hashes de contraseña con sal.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher implementa PasswordHasher con bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: PasswordCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(hashBytes), nil
}

// Verify compara en tiempo constante; un hash malformado cuenta como no coincidente.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
