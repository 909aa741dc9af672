package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartesi/tx-manager/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
rpc_url = "http://localhost:8545"
chain_id = 1
file_store_dir = "/tmp/txmgr"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RpcUrl)
	assert.Equal(t, config.StoreFile, cfg.Store)
}

func TestLoad_MissingRpcUrl(t *testing.T) {
	path := writeConfig(t, `chain_id = 1`)

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_SqlStoreRequiresNoFileDir(t *testing.T) {
	path := writeConfig(t, `
rpc_url = "http://localhost:8545"
store = "sql"
db_host = "127.0.0.1"
db_schema = "txmgr"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.StoreSQL, cfg.Store)
}

func TestLoad_EnvOverridesDbCredentials(t *testing.T) {
	path := writeConfig(t, `
rpc_url = "http://localhost:8545"
store = "sql"
db_host = "file-value"
`)

	t.Setenv("TXMGR_DB_HOST", "env-value")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-value", cfg.DbHost)
}
