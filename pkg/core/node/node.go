// Package node implements a peer in the cooperative single-coin network.
// Each node owns an independent chain, a UTXO set and a FIFO mempool, and
// talks to its neighbors synchronously through the Peer surface.
package node

import (
	"github.com/pkg/errors"
	logger "github.com/sirupsen/logrus"

	"github.com/monocoin-network/monocoin/pkg/config"
	"github.com/monocoin-network/monocoin/pkg/core/data/block"
	"github.com/monocoin-network/monocoin/pkg/core/data/transactions"
	"github.com/monocoin-network/monocoin/pkg/core/database"
	"github.com/monocoin-network/monocoin/pkg/crypto/key"
)

var log = logger.WithFields(logger.Fields{"prefix": "node"})

var (
	// ErrSelfConnection is returned when a node is asked to connect to itself.
	ErrSelfConnection = errors.New("node: cannot connect to self")

	// ErrBlockNotFound is returned by GetBlock for a hash outside the chain.
	ErrBlockNotFound = errors.New("node: block not found")
)

// Peer is the surface a node exposes to its neighbors. Every callback is
// synchronous and runs on the caller's goroutine; the package is not safe
// for concurrent use without external serialization.
type Peer interface {
	GetBlock(hash block.Hash) (*block.Block, error)
	NotifyOfBlock(hash block.Hash, sender Peer)
	AddTransactionToMempool(tx *transactions.Transaction) bool
	LatestHash() block.Hash
	Mempool() []*transactions.Transaction
}

// Node holds one participant's view of the network.
type Node struct {
	keys    *key.Pair
	chain   []*block.Block
	utxo    utxoSet
	pool    *mempool
	peers   map[*Node]struct{}
	latest  block.Hash
	archive database.DB
}

// Option tweaks a node at construction time.
type Option func(*Node)

// WithArchive makes the node record every block it accepts into the
// given archive. The archive is write-only from the node's point of view;
// the chain is never reloaded from it.
func WithArchive(db database.DB) Option {
	return func(n *Node) {
		n.archive = db
	}
}

// New creates a node with an empty chain, an empty mempool, no peers and
// a fresh keypair. Blocks mined by this node reward its own address with
// a single new coin.
func New(opts ...Option) (*Node, error) {
	keys, err := key.NewPair()
	if err != nil {
		return nil, err
	}

	n := &Node{
		keys:   keys,
		pool:   newMempool(),
		peers:  make(map[*Node]struct{}),
		latest: block.GenesisPrev,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

// Connect links two nodes for block and transaction updates. Links are
// symmetric. A freshly linked pair immediately exchanges tips: the side
// with the longer (or equal) chain notifies the other, which triggers
// catch-up. Connecting an already linked pair is a no-op.
func (n *Node) Connect(other *Node) error {
	if n == other {
		return ErrSelfConnection
	}

	if _, linked := n.peers[other]; linked {
		return nil
	}

	n.peers[other] = struct{}{}
	other.peers[n] = struct{}{}

	if len(n.chain) >= len(other.chain) {
		if n.latest != block.GenesisPrev {
			other.NotifyOfBlock(n.latest, n)
		}
	} else if other.latest != block.GenesisPrev {
		n.NotifyOfBlock(other.latest, other)
	}

	return nil
}

// DisconnectFrom removes the link between two nodes. Nothing happens if
// they were not linked.
func (n *Node) DisconnectFrom(other *Node) {
	delete(n.peers, other)
	delete(other.peers, n)
}

// Connections returns the node's current neighbors.
func (n *Node) Connections() []*Node {
	conns := make([]*Node, 0, len(n.peers))
	for p := range n.peers {
		conns = append(conns, p)
	}
	return conns
}

// AddTransactionToMempool admits a transaction into the mempool and, on
// success, forwards it to every neighbor that does not already hold it.
// The containment check before forwarding is what terminates propagation
// across the peer graph. Returns false iff the transaction is a coinbase,
// spends an output that is not in the UTXO set, carries a bad signature,
// or contradicts an entry already in the mempool.
func (n *Node) AddTransactionToMempool(tx *transactions.Transaction) bool {
	if n.pool.contains(tx.TxID()) {
		return true
	}

	if tx.IsCoinbase() {
		return false
	}

	spent, ok := n.utxo.find(*tx.Input)
	if !ok {
		return false
	}

	if !key.Verify(transactions.SigningPayload(*tx.Input, tx.Output), tx.Signature, spent.Output) {
		return false
	}

	if n.pool.spends(*tx.Input) {
		return false
	}

	n.pool.add(tx)
	log.WithField("tx", tx.TxID()).Trace("transaction admitted")

	for p := range n.peers {
		if !poolHolds(p.Mempool(), tx.TxID()) {
			p.AddTransactionToMempool(tx)
		}
	}

	return true
}

// MineBlock creates the next block on this node's chain: a coinbase that
// rewards the miner plus up to MaxBlockTxs-1 mempool transactions in FIFO
// order. There is no difficulty target, so mining always succeeds. All
// neighbors are notified of the new tip.
func (n *Node) MineBlock() block.Hash {
	cb, err := transactions.NewCoinbase(n.keys.PublicKey())
	if err != nil {
		log.WithError(err).Panic("entropy source failed")
	}

	txs := append([]*transactions.Transaction{cb}, n.pool.front(config.Get().Chain.MaxBlockTxs-1)...)
	blk := block.New(n.latest, txs)

	n.chain = append(n.chain, blk)
	n.applyBlock(blk)
	n.latest = blk.Hash()
	n.archiveBlock(blk)

	log.WithFields(logger.Fields{
		"hash": n.latest,
		"txs":  len(txs),
	}).Debug("block mined")

	for p := range n.peers {
		p.NotifyOfBlock(n.latest, n)
	}

	return n.latest
}

// GetBlock returns the chain block with the given hash, or
// ErrBlockNotFound if no such block is on this node's chain.
func (n *Node) GetBlock(hash block.Hash) (*block.Block, error) {
	for _, blk := range n.chain {
		if blk.Hash() == hash {
			return blk, nil
		}
	}

	return nil, ErrBlockNotFound
}

// LatestHash returns the tip of this node's chain, or the genesis
// sentinel when the chain is empty.
func (n *Node) LatestHash() block.Hash {
	return n.latest
}

// Mempool returns the transactions that have not entered any block yet,
// in admission order.
func (n *Node) Mempool() []*transactions.Transaction {
	return n.pool.all()
}

// UTXO returns the unspent transactions of this node's chain view.
func (n *Node) UTXO() []*transactions.Transaction {
	out := make([]*transactions.Transaction, len(n.utxo))
	copy(out, n.utxo)
	return out
}

// CreateTransaction signs a transfer of one of this node's unspent coins
// to the target address and submits it to the mempool (which also
// propagates it). Coins with a pending spend in the mempool are skipped
// until ClearMempool frees them. Returns nil when no coin can be spent.
func (n *Node) CreateTransaction(target key.PublicKey) *transactions.Transaction {
	if len(target) == 0 {
		return nil
	}

	for _, unspent := range n.utxo {
		id := unspent.TxID()
		if n.pool.spends(id) {
			continue
		}

		if !unspent.Output.Equal(n.keys.PublicKey()) {
			continue
		}

		sig := n.keys.Sign(transactions.SigningPayload(id, target))
		tx := transactions.New(target, id, sig)
		if n.AddTransactionToMempool(tx) {
			return tx
		}
	}

	return nil
}

// ClearMempool drops every pending transaction on this node only;
// neighbors keep their copies. Clearing frees coins with pending spends
// for another CreateTransaction attempt.
func (n *Node) ClearMempool() {
	n.pool.clear()
}

// Balance counts the unspent coins held by this node's address. A coin
// with a pending spend in the mempool still counts until the spending
// transaction enters a block.
func (n *Node) Balance() int {
	return n.utxo.ownedBy(n.keys.PublicKey())
}

// Address returns the node's public key.
func (n *Node) Address() key.PublicKey {
	return n.keys.PublicKey()
}

// applyBlock folds an accepted block into the UTXO set and drops its
// transactions from the mempool.
func (n *Node) applyBlock(blk *block.Block) {
	confirmed := make(map[transactions.TxID]struct{}, len(blk.Transactions()))
	for _, tx := range blk.Transactions() {
		if !tx.IsCoinbase() {
			n.utxo.remove(*tx.Input)
		}

		n.utxo.add(tx)
		confirmed[tx.TxID()] = struct{}{}
	}

	n.pool.removeConfirmed(confirmed)
}

func (n *Node) archiveBlock(blk *block.Block) {
	if n.archive == nil {
		return
	}

	if err := n.archive.StoreBlock(blk); err != nil {
		log.WithError(err).WithField("hash", blk.Hash()).
			Error("could not archive block")
	}
}

func (n *Node) hasBlock(hash block.Hash) bool {
	for _, blk := range n.chain {
		if blk.Hash() == hash {
			return true
		}
	}
	return false
}

func poolHolds(pool []*transactions.Transaction, id transactions.TxID) bool {
	for _, tx := range pool {
		if tx.TxID() == id {
			return true
		}
	}
	return false
}
