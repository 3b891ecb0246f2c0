package node

import (
	"github.com/monocoin-network/monocoin/pkg/config"
	"github.com/monocoin-network/monocoin/pkg/core/data/transactions"
)

// mempool is the FIFO store of admitted but unconfirmed transactions.
// Admission order matters: miners fill blocks from the front, and the
// restore pass after a reorg keeps the original order.
type mempool struct {
	txs []*transactions.Transaction
}

func newMempool() *mempool {
	return &mempool{}
}

// contains reports whether a transaction with the given id is pending.
func (m *mempool) contains(id transactions.TxID) bool {
	return poolHolds(m.txs, id)
}

// spends reports whether some pending transaction already spends the
// given output. Two pending spends of the same coin would contradict.
func (m *mempool) spends(input transactions.TxID) bool {
	for _, tx := range m.txs {
		if tx.Input != nil && *tx.Input == input {
			return true
		}
	}
	return false
}

func (m *mempool) add(tx *transactions.Transaction) {
	m.txs = append(m.txs, tx)

	if limit := config.Get().Mempool.MaxSizeTxs; len(m.txs) > limit {
		log.WithField("pending", len(m.txs)).Warn("mempool is full")
	}
}

// front returns up to k transactions from the head of the queue without
// removing them; confirmation removes them once the block is applied.
func (m *mempool) front(k int) []*transactions.Transaction {
	if k > len(m.txs) {
		k = len(m.txs)
	}
	if k < 0 {
		k = 0
	}

	out := make([]*transactions.Transaction, k)
	copy(out, m.txs[:k])
	return out
}

// removeConfirmed drops every pending transaction whose id appears in
// the confirmed set.
func (m *mempool) removeConfirmed(confirmed map[transactions.TxID]struct{}) {
	kept := m.txs[:0]
	for _, tx := range m.txs {
		if _, ok := confirmed[tx.TxID()]; !ok {
			kept = append(kept, tx)
		}
	}
	m.txs = kept
}

// snapshot returns a copy of the queue, used to restore surviving
// transactions after a reorg.
func (m *mempool) snapshot() []*transactions.Transaction {
	out := make([]*transactions.Transaction, len(m.txs))
	copy(out, m.txs)
	return out
}

func (m *mempool) all() []*transactions.Transaction {
	return m.snapshot()
}

func (m *mempool) clear() {
	m.txs = nil
}
