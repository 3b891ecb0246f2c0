// Package block defines the chain's block record: an ordered list of
// transactions linked to its predecessor by hash.
package block

import (
	"bytes"
	"encoding/hex"
	"io"

	"github.com/monocoin-network/monocoin/pkg/core/data/transactions"
	"github.com/monocoin-network/monocoin/pkg/crypto/hash"
	"github.com/monocoin-network/monocoin/pkg/wire/encoding"
)

// Hash identifies a block by the digest of its contents.
type Hash [hash.Size]byte

// GenesisPrev is the well-known hash that the first block of every chain
// points to. It is also the tip reported by a node with an empty chain.
var GenesisPrev = Hash{}

// Block is an immutable list of transactions plus the hash of the
// previous block.
type Block struct {
	prevHash Hash
	txs      []*transactions.Transaction
}

// New returns a block holding the given transactions on top of the block
// identified by prev.
func New(prev Hash, txs []*transactions.Transaction) *Block {
	return &Block{prevHash: prev, txs: txs}
}

// Hash computes the block's identity: the digest of the previous hash
// followed by the ids of the transactions in order. It is recomputed from
// the fields on every call, never cached.
func (b *Block) Hash() Hash {
	payload := make([]byte, 0, hash.Size*(len(b.txs)+1))
	payload = append(payload, b.prevHash[:]...)
	for _, tx := range b.txs {
		id := tx.TxID()
		payload = append(payload, id[:]...)
	}

	var h Hash
	copy(h[:], hash.Sha256(payload))
	return h
}

// Transactions returns the transactions in this block, in order.
func (b *Block) Transactions() []*transactions.Transaction {
	return b.txs
}

// PrevHash returns the hash of the block this one extends.
func (b *Block) PrevHash() Hash {
	return b.prevHash
}

// Encode writes the block to w.
func (b *Block) Encode(w io.Writer) error {
	if err := encoding.Write256(w, b.prevHash[:]); err != nil {
		return err
	}

	if err := encoding.WriteVarInt(w, uint64(len(b.txs))); err != nil {
		return err
	}

	for _, tx := range b.txs {
		if err := tx.Encode(w); err != nil {
			return err
		}
	}

	return nil
}

// Decode reads a block from r into b.
func (b *Block) Decode(r io.Reader) error {
	var prev []byte
	if err := encoding.Read256(r, &prev); err != nil {
		return err
	}
	copy(b.prevHash[:], prev)

	lTxs, err := encoding.ReadVarInt(r)
	if err != nil {
		return err
	}

	b.txs = make([]*transactions.Transaction, lTxs)
	for i := uint64(0); i < lTxs; i++ {
		tx := &transactions.Transaction{}
		if err := tx.Decode(r); err != nil {
			return err
		}

		b.txs[i] = tx
	}

	return nil
}

// Bytes returns the encoded form of the block.
func (b *Block) Bytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := b.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns a short hex form of the hash, for logs.
func (h Hash) String() string {
	return hex.EncodeToString(h[:8])
}
