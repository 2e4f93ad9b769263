package account

import "golang.org/x/crypto/bcrypt"

// hasher wraps bcrypt with a configurable cost.
type hasher struct {
	cost int
}

func newHasher(cost int) hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return hasher{cost: cost}
}

func (h hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h hasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
