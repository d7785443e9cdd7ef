// Package daemon holds the service configuration and the wiring that
// assembles a running node: value ledger, escrow contract, persistence
// and the HTTP API.
package daemon

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the daemon's TOML configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Hashtag HashtagConfig `toml:"hashtag"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Metrics MetricsConfig `toml:"metrics"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// StorageConfig configures persistence.
type StorageConfig struct {
	Path string `toml:"path"` // sqlite database file; ":memory:" for ephemeral
}

// HashtagConfig configures the escrow contract instance.
type HashtagConfig struct {
	Name          string `toml:"name"`
	Owner         string `toml:"owner"`
	PayoutAddress string `toml:"payout_address"`
	Fee           string `toml:"fee"` // base-10 token amount
	MetadataHash  string `toml:"metadata_hash"`
	Address       string `toml:"address"` // the contract's ledger account
}

// LedgerConfig configures the local value-ledger simulation.
type LedgerConfig struct {
	Address string            `toml:"address"` // ledger principal identity
	Seed    map[string]string `toml:"seed"`    // account → initial balance
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns the defaults for a local node.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8480,
		},
		Storage: StorageConfig{
			Path: "simpledeal.db",
		},
		Hashtag: HashtagConfig{
			Name:          "SimpleDeal",
			Owner:         "owner",
			PayoutAddress: "owner",
			Fee:           "0",
			Address:       "hashtag",
		},
		Ledger: LedgerConfig{
			Address: "value-ledger",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// LoadConfig reads a TOML config file over the defaults. A missing
// file is not an error — the defaults stand.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}
