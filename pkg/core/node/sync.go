package node

import (
	logger "github.com/sirupsen/logrus"

	"github.com/monocoin-network/monocoin/pkg/config"
	"github.com/monocoin-network/monocoin/pkg/core/data/block"
	"github.com/monocoin-network/monocoin/pkg/core/data/transactions"
)

// NotifyOfBlock is the callback a neighbor uses to announce a new tip.
// If the tip is unknown, the missing branch is fetched backwards from the
// sender until it meets the local chain or genesis. The node switches to
// the fetched branch only when it is strictly longer than the local tail
// it replaces, validating block by block; an invalid block halts
// application but keeps the validated prefix. Every applied block is
// re-announced to all neighbors except the sender, which is what floods a
// new tip across the network without recursing forever: nodes that
// already hold the tip return immediately.
func (n *Node) NotifyOfBlock(hash block.Hash, sender Peer) {
	if n.hasBlock(hash) {
		return
	}

	branch, meeting, ok := n.fetchBranch(hash, sender)
	if !ok {
		return
	}

	forkIndex := -1
	if meeting != block.GenesisPrev {
		forkIndex = n.indexOf(meeting)
		if forkIndex < 0 {
			// fetchBranch stopped on a hash we no longer hold
			return
		}
	}

	localTail := len(n.chain) - (forkIndex + 1)
	if len(branch) <= localTail {
		return
	}

	n.reorg(forkIndex, branch, sender)
}

// fetchBranch walks backwards from tip, requesting each block from the
// sender, until it reaches genesis or a block already on the local chain.
// The fetched blocks are returned tip-last, together with the meeting
// hash. The walk aborts with no result when the sender serves a block
// whose hash does not match the request, when a request fails, or when
// the walk exceeds the configured bound (which breaks loops served by
// lying peers).
func (n *Node) fetchBranch(tip block.Hash, sender Peer) ([]*block.Block, block.Hash, bool) {
	var branch []*block.Block

	current := tip
	for current != block.GenesisPrev && !n.hasBlock(current) {
		if len(branch) >= config.Get().Chain.MaxChainWalk {
			log.WithField("tip", tip).Warn("abandoning chain walk, bound exceeded")
			return nil, block.Hash{}, false
		}

		blk, err := sender.GetBlock(current)
		if err != nil {
			log.WithField("hash", current).Debug("peer could not serve block")
			return nil, block.Hash{}, false
		}

		if blk.Hash() != current {
			log.WithFields(logger.Fields{
				"requested": current,
				"served":    blk.Hash(),
			}).Warn("peer served block with wrong hash")
			return nil, block.Hash{}, false
		}

		branch = append([]*block.Block{blk}, branch...)
		current = blk.PrevHash()
	}

	return branch, current, true
}

// reorg replaces the chain suffix after forkIndex with the fetched
// branch. The UTXO set is rebuilt by replaying the surviving prefix from
// genesis, the branch is applied block by block under validation, and
// pending transactions that were neither confirmed by the new branch nor
// invalidated by it are restored to the mempool in their original order.
func (n *Node) reorg(forkIndex int, branch []*block.Block, sender Peer) {
	oldPool := n.pool.snapshot()

	n.chain = n.chain[:forkIndex+1]
	n.utxo = nil
	n.pool.clear()

	for _, blk := range n.chain {
		n.applyBlock(blk)
	}

	confirmed := make(map[transactions.TxID]struct{})
	for _, blk := range branch {
		if err := n.validateBlock(blk); err != nil {
			log.WithError(err).WithField("hash", blk.Hash()).
				Debug("rejecting block, keeping validated prefix")
			break
		}

		n.chain = append(n.chain, blk)
		n.applyBlock(blk)
		n.latest = blk.Hash()
		n.archiveBlock(blk)

		for _, tx := range blk.Transactions() {
			confirmed[tx.TxID()] = struct{}{}
		}

		for p := range n.peers {
			if Peer(p) != sender {
				p.NotifyOfBlock(n.latest, n)
			}
		}
	}

	// The branch may have been rejected outright; the tip must describe
	// whatever chain remains.
	if len(n.chain) == 0 {
		n.latest = block.GenesisPrev
	} else {
		n.latest = n.chain[len(n.chain)-1].Hash()
	}

	for _, tx := range oldPool {
		if _, ok := confirmed[tx.TxID()]; ok {
			continue
		}

		if n.validateTransaction(tx) {
			n.pool.add(tx)
		}
	}
}

func (n *Node) indexOf(hash block.Hash) int {
	for i, blk := range n.chain {
		if blk.Hash() == hash {
			return i
		}
	}
	return -1
}
