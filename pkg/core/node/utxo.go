package node

import (
	"github.com/monocoin-network/monocoin/pkg/core/data/transactions"
	"github.com/monocoin-network/monocoin/pkg/crypto/key"
)

// utxoSet holds the confirmed transactions whose coin has not been spent
// by a later confirmed transaction, in confirmation order.
type utxoSet []*transactions.Transaction

// find returns the unspent transaction with the given id.
func (s utxoSet) find(id transactions.TxID) (*transactions.Transaction, bool) {
	for _, tx := range s {
		if tx.TxID() == id {
			return tx, true
		}
	}
	return nil, false
}

func (s *utxoSet) add(tx *transactions.Transaction) {
	*s = append(*s, tx)
}

// remove drops the entry with the given id, if present.
func (s *utxoSet) remove(id transactions.TxID) {
	for i, tx := range *s {
		if tx.TxID() == id {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return
		}
	}
}

// clone returns an independent copy, used as a scratch view during block
// validation.
func (s utxoSet) clone() utxoSet {
	out := make(utxoSet, len(s))
	copy(out, s)
	return out
}

// ownedBy counts the unspent coins held by the given address.
func (s utxoSet) ownedBy(pub key.PublicKey) int {
	var owned int
	for _, tx := range s {
		if tx.Output.Equal(pub) {
			owned++
		}
	}
	return owned
}
