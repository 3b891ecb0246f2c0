package crypto

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// RandEntropy gets a slice of random bytes of the specified length
// from the system's entropy source.
func RandEntropy(n uint32) ([]byte, error) {
	b := make([]byte, n)
	a, err := rand.Read(b)
	if err != nil {
		return nil, errors.Wrap(err, "could not read entropy")
	}
	if uint32(a) != n {
		return nil, errors.New("entropy source gave insufficient bytes")
	}

	return b, nil
}
