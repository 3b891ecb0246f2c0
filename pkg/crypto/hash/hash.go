package hash

import "crypto/sha256"

// Size is the byte length of every digest produced by this package.
const Size = sha256.Size

// Sha256 returns the SHA-256 digest of the concatenation of the given
// byte slices.
func Sha256(bs ...[]byte) []byte {
	h := sha256.New()
	for _, b := range bs {
		_, _ = h.Write(b)
	}

	return h.Sum(nil)
}
