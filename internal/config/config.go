// Package config loads the settings cmd/txmgr needs to construct a
// manager.Manager: the signing endpoint, chain descriptor, persistence
// backend, and poll/confirmation tunables. Settings live in a plain
// TOML struct; database credentials may instead come from environment
// variables so they never need to sit in a checked-in config file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Store selects which persistence backend cmd/txmgr wires up.
type Store string

const (
	StoreFile Store = "file"
	StoreSQL  Store = "sql"
)

// Config is the full set of settings needed to run the manager.
type Config struct {
	// RpcUrl is the signing RPC middleware endpoint.
	RpcUrl string `toml:"rpc_url"`
	// ChainID and IsLegacy make up the chain descriptor.
	ChainID  uint64 `toml:"chain_id"`
	IsLegacy bool   `toml:"is_legacy"`

	PollIntervalSeconds             int   `toml:"poll_interval_seconds"`
	TransactionMiningTimeoutSeconds int   `toml:"transaction_mining_timeout_seconds"`
	BlockTimeSeconds                int   `toml:"block_time_seconds"`
	MinBumpFactorPct                int64 `toml:"min_bump_factor_pct"`

	Store Store `toml:"store"`

	// FileStoreDir is used when Store == StoreFile.
	FileStoreDir string `toml:"file_store_dir"`

	// The following are used when Store == StoreSQL. Host, username,
	// password and schema may instead be supplied via the TXMGR_DB_HOST,
	// TXMGR_DB_USERNAME, TXMGR_DB_PASSWORD and TXMGR_DB_SCHEMA environment
	// variables, keeping credentials out of the checked-in TOML file; the
	// port is read from the TOML file only.
	DbHost     string `toml:"db_host"`
	DbPort     int    `toml:"db_port"`
	DbUsername string `toml:"db_username"`
	DbPassword string `toml:"db_password"`
	DbSchema   string `toml:"db_schema"`

	// GasStationURL and GasStationAPIKey configure the optional HTTP gas
	// oracle (internal/oracle.HTTPStation). Empty URL means use the
	// default node-derived oracle instead.
	GasStationURL    string `toml:"gas_station_url"`
	GasStationAPIKey string `toml:"gas_station_api_key"`
}

// Load reads path as TOML, then applies TXMGR_DB_* environment overrides
// after loading any .env file found in the working directory.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.RpcUrl == "" {
		return nil, fmt.Errorf("config: rpc_url is required")
	}
	if cfg.Store == "" {
		cfg.Store = StoreFile
	}
	if cfg.Store == StoreFile && cfg.FileStoreDir == "" {
		return nil, fmt.Errorf("config: file_store_dir is required when store = \"file\"")
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TXMGR_DB_HOST"); v != "" {
		cfg.DbHost = v
	}
	if v := os.Getenv("TXMGR_DB_USERNAME"); v != "" {
		cfg.DbUsername = v
	}
	if v := os.Getenv("TXMGR_DB_PASSWORD"); v != "" {
		cfg.DbPassword = v
	}
	if v := os.Getenv("TXMGR_DB_SCHEMA"); v != "" {
		cfg.DbSchema = v
	}
	if v := os.Getenv("TXMGR_RPC_URL"); v != "" {
		cfg.RpcUrl = v
	}
}
