// The exporter walks a node's block archive and dumps its contents into
// a SQLite file, so chain history can be inspected with plain SQL while
// the node itself stays in-memory.
package main

import (
	"database/sql"
	"encoding/hex"
	"flag"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/monocoin-network/monocoin/pkg/config"
	"github.com/monocoin-network/monocoin/pkg/core/data/block"
	"github.com/monocoin-network/monocoin/pkg/core/database"
)

var (
	configPath  = flag.String("config", "", "optional TOML config file")
	profilePath = flag.String("profile", "", "optional properties override profile")
	archivePath = flag.String("archive", "", "block archive directory (defaults to database.dir)")
	outPath     = flag.String("out", "chain.sqlite", "SQLite output file")
)

func main() {
	flag.Parse()

	if *configPath != "" {
		if err := config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}

	if *profilePath != "" {
		if err := config.LoadProfile(*profilePath); err != nil {
			log.Fatal(err)
		}
	}

	config.SetupLogger()

	dir := *archivePath
	if dir == "" {
		dir = config.Get().Database.Dir
	}

	if err := export(dir, *outPath); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func export(archiveDir, out string) error {
	archive, err := database.New(archiveDir)
	if err != nil {
		return err
	}
	defer archive.Close()

	db, err := sql.Open("sqlite3", out)
	if err != nil {
		return errors.Wrapf(err, "exporter: could not open %s", out)
	}
	defer db.Close()

	if err := createTables(db); err != nil {
		return err
	}

	insBlock, err := db.Prepare(`INSERT OR REPLACE INTO blocks (hash, prev_hash, tx_count) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "exporter: could not prepare block insert")
	}
	defer insBlock.Close()

	insTx, err := db.Prepare(`INSERT OR REPLACE INTO transactions
		(txid, block_hash, position, coinbase, input, output) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "exporter: could not prepare tx insert")
	}
	defer insTx.Close()

	var blocks, txs int
	err = archive.ForEachBlock(func(blk *block.Block) error {
		hash := blk.Hash()
		prev := blk.PrevHash()

		if _, err := insBlock.Exec(hex.EncodeToString(hash[:]), hex.EncodeToString(prev[:]), len(blk.Transactions())); err != nil {
			return errors.Wrap(err, "exporter: could not insert block")
		}
		blocks++

		for i, tx := range blk.Transactions() {
			id := tx.TxID()

			var input interface{}
			if tx.Input != nil {
				input = hex.EncodeToString(tx.Input[:])
			}

			if _, err := insTx.Exec(
				hex.EncodeToString(id[:]),
				hex.EncodeToString(hash[:]),
				i,
				tx.IsCoinbase(),
				input,
				hex.EncodeToString(tx.Output),
			); err != nil {
				return errors.Wrap(err, "exporter: could not insert transaction")
			}
			txs++
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"blocks": blocks,
		"txs":    txs,
		"out":    out,
	}).Info("archive exported")

	return nil
}

func createTables(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
			hash      TEXT PRIMARY KEY,
			prev_hash TEXT NOT NULL,
			tx_count  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			txid       TEXT PRIMARY KEY,
			block_hash TEXT NOT NULL,
			position   INTEGER NOT NULL,
			coinbase   INTEGER NOT NULL,
			input      TEXT,
			output     TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "exporter: could not create schema")
		}
	}

	return nil
}
