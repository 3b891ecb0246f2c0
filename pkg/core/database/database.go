// Package database implements the block archive: an on-disk record of
// every block a node has accepted. The archive is a write-mostly sink;
// a node never rebuilds its chain from it, but offline tools (see
// cmd/exporter) read it back.
package database

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/monocoin-network/monocoin/pkg/core/data/block"
)

// ErrBlockNotFound is returned when a fetched hash is not in the archive.
var ErrBlockNotFound = errors.New("database: block not found")

// DB is the archive surface the node and the exporter work against.
type DB interface {
	StoreBlock(blk *block.Block) error
	FetchBlock(hash block.Hash) (*block.Block, error)
	HasBlock(hash block.Hash) (bool, error)
	ForEachBlock(fn func(blk *block.Block) error) error
	Close() error
}

var (
	blockPrefix = []byte("BLOCK")
	txPrefix    = []byte("TX")
)

type ldb struct {
	storage *leveldb.DB
	path    string
}

// New opens (or creates) a leveldb-backed archive at the given path.
func New(path string) (DB, error) {
	storage, err := leveldb.OpenFile(path, nil)

	// Try to recover if corrupted
	if _, corrupted := err.(*ldberrors.ErrCorrupted); corrupted {
		storage, err = leveldb.RecoverFile(path, nil)
	}

	if _, accessDenied := err.(*os.PathError); accessDenied {
		return nil, errors.Wrap(err, "database: could not open or create archive")
	}

	if err != nil {
		return nil, err
	}

	return &ldb{storage: storage, path: path}, nil
}

// StoreBlock writes a block and an index entry for each of its
// transactions. Not atomic across the two key families, which is
// acceptable for an archive that is only appended to.
func (l *ldb) StoreBlock(blk *block.Block) error {
	hash := blk.Hash()

	val, err := blk.Bytes()
	if err != nil {
		return err
	}

	key := append(blockPrefix, hash[:]...)
	if err := l.storage.Put(key, val, nil); err != nil {
		return err
	}

	for _, tx := range blk.Transactions() {
		id := tx.TxID()
		txKey := append(txPrefix, id[:]...)
		if err := l.storage.Put(txKey, hash[:], nil); err != nil {
			return err
		}
	}

	return nil
}

// FetchBlock reads a block back by hash.
func (l *ldb) FetchBlock(hash block.Hash) (*block.Block, error) {
	key := append(blockPrefix, hash[:]...)

	val, err := l.storage.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}

	blk := &block.Block{}
	if err := blk.Decode(bytes.NewReader(val)); err != nil {
		return nil, errors.Wrap(err, "database: corrupt block record")
	}

	return blk, nil
}

// HasBlock reports whether the archive holds a block with the given hash.
func (l *ldb) HasBlock(hash block.Hash) (bool, error) {
	key := append(blockPrefix, hash[:]...)
	return l.storage.Has(key, nil)
}

// ForEachBlock calls fn for every archived block, in key order.
func (l *ldb) ForEachBlock(fn func(blk *block.Block) error) error {
	iter := l.storage.NewIterator(util.BytesPrefix(blockPrefix), nil)
	defer iter.Release()

	for iter.Next() {
		blk := &block.Block{}
		if err := blk.Decode(bytes.NewReader(iter.Value())); err != nil {
			return errors.Wrap(err, "database: corrupt block record")
		}

		if err := fn(blk); err != nil {
			return err
		}
	}

	return iter.Error()
}

// Close releases the underlying storage.
func (l *ldb) Close() error {
	return l.storage.Close()
}
