package node

import (
	"github.com/pkg/errors"

	"github.com/monocoin-network/monocoin/pkg/config"
	"github.com/monocoin-network/monocoin/pkg/core/data/block"
	"github.com/monocoin-network/monocoin/pkg/core/data/transactions"
	"github.com/monocoin-network/monocoin/pkg/crypto/key"
)

// validateBlock checks a candidate block against the node's current UTXO
// view: size limit, a single coinbase at most, no duplicate transactions,
// no double spend within the block, and for every spend a live unspent
// output and a valid signature. Spends may consume outputs created
// earlier in the same block.
func (n *Node) validateBlock(blk *block.Block) error {
	txs := blk.Transactions()

	if limit := config.Get().Chain.MaxBlockTxs; len(txs) > limit {
		return errors.Errorf("block has %d transactions, limit is %d", len(txs), limit)
	}

	var coinbases int
	seen := make(map[transactions.TxID]struct{}, len(txs))
	spent := make(map[transactions.TxID]struct{}, len(txs))
	view := n.utxo.clone()

	for _, tx := range txs {
		id := tx.TxID()
		if _, dup := seen[id]; dup {
			return errors.Errorf("duplicate transaction %s in block", id)
		}
		seen[id] = struct{}{}

		if tx.IsCoinbase() {
			coinbases++
			if coinbases > 1 {
				return errors.New("block has more than one coinbase")
			}

			view.add(tx)
			continue
		}

		input := *tx.Input
		if _, doubleSpend := spent[input]; doubleSpend {
			return errors.Errorf("output %s spent twice in block", input)
		}
		spent[input] = struct{}{}

		prev, ok := view.find(input)
		if !ok {
			return errors.Errorf("input %s is not an unspent output", input)
		}

		if !key.Verify(transactions.SigningPayload(input, tx.Output), tx.Signature, prev.Output) {
			return errors.Errorf("invalid signature on transaction %s", id)
		}

		view.remove(input)
		view.add(tx)
	}

	return nil
}

// validateTransaction re-checks a pending transaction against the current
// UTXO set, used when restoring the mempool after a reorg.
func (n *Node) validateTransaction(tx *transactions.Transaction) bool {
	if tx.IsCoinbase() {
		return false
	}

	prev, ok := n.utxo.find(*tx.Input)
	if !ok {
		return false
	}

	return key.Verify(transactions.SigningPayload(*tx.Input, tx.Output), tx.Signature, prev.Output)
}
