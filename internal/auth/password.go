package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultBcryptCost = 12
	_bcryptMaxBytes   = 72
)

// Hasher wraps bcrypt with a fixed cost.
type Hasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: can't hash password", err)
	}
	return string(hash), nil
}

func (h *Hasher) Matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

// Burn spends about as long as Matches does on a real hash. It keeps a
// lookup of an unknown email from answering faster than a wrong password.
func (h *Hasher) Burn(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("investboard-timing-dummy"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, truncate(password))
}

// bcrypt only looks at the first 72 bytes and refuses longer input.
func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > _bcryptMaxBytes {
		b = b[:_bcryptMaxBytes]
	}
	return b
}
