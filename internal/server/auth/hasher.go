package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the original deployment used.
const bcryptCost = 10

// PasswordHasher hashes plaintext passwords and verifies candidates against
// stored hashes. Hashing embeds a fresh random salt on every call, so two
// hashes of the same plaintext differ.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcryptCost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
