// Package transactions defines the single-coin transfer record and its
// identity. A transaction moves exactly one coin to the output address;
// a transaction with no input mints the coin and is only ever created by
// the miner of a block.
package transactions

import (
	"bytes"
	"encoding/hex"
	"io"

	"github.com/monocoin-network/monocoin/pkg/crypto"
	"github.com/monocoin-network/monocoin/pkg/crypto/hash"
	"github.com/monocoin-network/monocoin/pkg/crypto/key"
	"github.com/monocoin-network/monocoin/pkg/wire/encoding"
)

// TxID identifies a transaction by the digest of its contents.
type TxID [hash.Size]byte

// CoinbaseSigSize is the length of the random placeholder that takes the
// place of a signature in a coinbase. Its only job is to make every
// coinbase's TxID unique.
const CoinbaseSigSize = 64

// Transaction moves a single coin to Output. Input is the id of the
// spent transaction, or nil for a coinbase. Signature covers
// Input || Output and was made by the holder of the spent output's key.
type Transaction struct {
	Output    key.PublicKey
	Input     *TxID
	Signature []byte
}

// New returns a transfer of the coin identified by input to the given
// output address.
func New(output key.PublicKey, input TxID, sig []byte) *Transaction {
	in := input
	return &Transaction{Output: output, Input: &in, Signature: sig}
}

// NewCoinbase mints a coin to the miner's address. The signature slot is
// filled with random bytes so that every coinbase hashes differently.
func NewCoinbase(miner key.PublicKey) (*Transaction, error) {
	sig, err := crypto.RandEntropy(CoinbaseSigSize)
	if err != nil {
		return nil, err
	}

	return &Transaction{Output: miner, Input: nil, Signature: sig}, nil
}

// TxID computes the identifier of this transaction from its contents.
// The digest is recomputed on every call, never cached, so that any
// mutation of the fields is reflected in the id.
func (t *Transaction) TxID() TxID {
	var in []byte
	if t.Input != nil {
		in = t.Input[:]
	}

	var id TxID
	copy(id[:], hash.Sha256(in, t.Output, t.Signature))
	return id
}

// IsCoinbase reports whether this transaction mints a coin rather than
// spending one.
func (t *Transaction) IsCoinbase() bool {
	return t.Input == nil
}

// Equals reports whether two transactions have the same contents.
func (t *Transaction) Equals(other *Transaction) bool {
	if t == nil || other == nil {
		return t == other
	}

	return t.TxID() == other.TxID()
}

// SigningPayload is the message a spender signs: the id of the spent
// transaction followed by the destination address. Covering both halves
// is what stops a relay from redirecting a signed transfer.
func SigningPayload(input TxID, output key.PublicKey) []byte {
	msg := make([]byte, 0, len(input)+len(output))
	msg = append(msg, input[:]...)
	msg = append(msg, output...)
	return msg
}

// Encode writes the transaction to w.
func (t *Transaction) Encode(w io.Writer) error {
	if err := encoding.WriteBool(w, t.Input != nil); err != nil {
		return err
	}

	if t.Input != nil {
		if err := encoding.Write256(w, t.Input[:]); err != nil {
			return err
		}
	}

	if err := encoding.WriteVarBytes(w, t.Output); err != nil {
		return err
	}

	return encoding.WriteVarBytes(w, t.Signature)
}

// Decode reads a transaction from r into t.
func (t *Transaction) Decode(r io.Reader) error {
	var spends bool
	if err := encoding.ReadBool(r, &spends); err != nil {
		return err
	}

	t.Input = nil
	if spends {
		var in []byte
		if err := encoding.Read256(r, &in); err != nil {
			return err
		}

		var id TxID
		copy(id[:], in)
		t.Input = &id
	}

	var out []byte
	if err := encoding.ReadVarBytes(r, &out); err != nil {
		return err
	}
	t.Output = key.PublicKey(out)

	return encoding.ReadVarBytes(r, &t.Signature)
}

// Bytes returns the encoded form of the transaction.
func (t *Transaction) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := t.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns a short hex form of the transaction id, for logs.
func (id TxID) String() string {
	return hex.EncodeToString(id[:8])
}
