// Package config holds the process-wide parameter registry. Values come
// from built-in defaults, optionally overlaid by a TOML file and by a
// flat key=value properties profile.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

// Registry is the full set of tunable parameters.
type Registry struct {
	Chain    chainConfiguration    `toml:"chain"`
	Mempool  mempoolConfiguration  `toml:"mempool"`
	Logger   loggerConfiguration   `toml:"logger"`
	Database databaseConfiguration `toml:"database"`
}

type chainConfiguration struct {
	// MaxBlockTxs is the block size limit, counted in transactions.
	// A miner fills a block with one coinbase plus up to MaxBlockTxs-1
	// mempool entries; blocks above the limit are rejected outright.
	MaxBlockTxs int `toml:"max_block_txs"`

	// MaxChainWalk bounds how many blocks a node will fetch backwards
	// from a peer while resolving an unknown tip. A walk that exceeds
	// it is abandoned, which cuts short loops served by lying peers.
	MaxChainWalk int `toml:"max_chain_walk"`
}

type mempoolConfiguration struct {
	// MaxSizeTxs is the occupancy above which the mempool starts
	// logging warnings. Admission is not refused; the limit is an alarm
	// threshold.
	MaxSizeTxs int `toml:"max_size_txs"`
}

type loggerConfiguration struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`

	// Rotation parameters, used only when Output names a file.
	MaxSizeMB  int `toml:"max_size_mb"`
	MaxBackups int `toml:"max_backups"`
	MaxAgeDays int `toml:"max_age_days"`
}

type databaseConfiguration struct {
	// Dir is where a node's block archive lives, when archiving is on.
	Dir string `toml:"dir"`
}

var r Registry = defaultRegistry()

func defaultRegistry() Registry {
	return Registry{
		Chain: chainConfiguration{
			MaxBlockTxs:  10,
			MaxChainWalk: 10000,
		},
		Mempool: mempoolConfiguration{
			MaxSizeTxs: 1000,
		},
		Logger: loggerConfiguration{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Database: databaseConfiguration{
			Dir: "monocoin.db",
		},
	}
}

// Get returns the current registry.
func Get() Registry {
	return r
}

// Load replaces the registry with the built-in defaults overlaid by the
// values of a TOML file. Values set by an earlier Load or LoadProfile are
// not kept.
func Load(path string) error {
	fresh := defaultRegistry()
	if _, err := toml.DecodeFile(path, &fresh); err != nil {
		return errors.Wrapf(err, "config: could not decode %s", path)
	}

	if err := fresh.validate(); err != nil {
		return err
	}

	r = fresh
	return nil
}

// LoadProfile overlays the registry with a flat key=value properties
// file, e.g. `chain.max_block_txs=4`. Keys absent from the file keep
// their current values.
func LoadProfile(path string) error {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return errors.Wrapf(err, "config: could not load profile %s", path)
	}

	fresh := r
	fresh.Chain.MaxBlockTxs = p.GetInt("chain.max_block_txs", fresh.Chain.MaxBlockTxs)
	fresh.Chain.MaxChainWalk = p.GetInt("chain.max_chain_walk", fresh.Chain.MaxChainWalk)
	fresh.Mempool.MaxSizeTxs = p.GetInt("mempool.max_size_txs", fresh.Mempool.MaxSizeTxs)
	fresh.Logger.Level = p.GetString("logger.level", fresh.Logger.Level)
	fresh.Logger.Output = p.GetString("logger.output", fresh.Logger.Output)
	fresh.Database.Dir = p.GetString("database.dir", fresh.Database.Dir)

	if err := fresh.validate(); err != nil {
		return err
	}

	r = fresh
	return nil
}

// Reset restores the built-in defaults. Meant for tests.
func Reset() {
	r = defaultRegistry()
}

func (reg Registry) validate() error {
	if reg.Chain.MaxBlockTxs < 2 {
		return errors.Errorf("config: chain.max_block_txs must be at least 2, got %d", reg.Chain.MaxBlockTxs)
	}

	if reg.Chain.MaxChainWalk < 1 {
		return errors.Errorf("config: chain.max_chain_walk must be positive, got %d", reg.Chain.MaxChainWalk)
	}

	return nil
}
