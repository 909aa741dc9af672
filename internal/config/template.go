package config

// Template is the starting point for a new config.toml: a skeleton, with
// the optional backends commented out, that the CLI's init-config command
// writes out for an operator to fill in.
const Template = `rpc_url = "http://localhost:8545"
chain_id = 1337
is_legacy = false

poll_interval_seconds = 15
transaction_mining_timeout_seconds = 60
block_time_seconds = 15
min_bump_factor_pct = 110

store = "file"
file_store_dir = "./txmgr-data"

# Uncomment to use the MySQL-backed store instead of "file".
# store = "sql"
# db_host = "127.0.0.1"
# db_port = 3306
# db_username = "root"
# db_password = ""
# db_schema = "txmgr"

# Uncomment to use an HTTP gas station oracle instead of the node-derived
# default.
# gas_station_url = "https://ethgasstation.info/api/ethgasAPI.json"
# gas_station_api_key = ""
`
