package key

import (
	"bytes"
	"crypto/rand"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ed25519"
)

// PublicKey is the spendable address of a coin. Two keys are the same
// address iff their bytes are equal.
type PublicKey []byte

// Pair holds a node's signing keypair. The private half never leaves
// the pair.
type Pair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewPair generates a fresh keypair from the system entropy source.
func NewPair() (*Pair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "key: could not generate keypair")
	}

	return &Pair{pub: pub, priv: priv}, nil
}

// PublicKey returns the public half of the pair.
func (p *Pair) PublicKey() PublicKey {
	return PublicKey(p.pub)
}

// Sign signs the given message with the pair's private key.
func (p *Pair) Sign(message []byte) []byte {
	return ed25519.Sign(p.priv, message)
}

// Verify reports whether sig is a valid signature of message under pub.
// Any tampering with the message, the signature or the key makes this
// return false.
func Verify(message, sig []byte, pub PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}

// Equal reports whether two public keys denote the same address.
func (pk PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(pk, other)
}
