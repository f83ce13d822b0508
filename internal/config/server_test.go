package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) LookupEnv {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadServer_Defaults(t *testing.T) {
	c, err := LoadServer(nil, envOf(nil), io.Discard)
	require.NoError(t, err)
	require.Equal(t, ":9090", c.GRPCAddr)
	require.Equal(t, ":8080", c.HTTPAddr)
	require.Equal(t, DriverPostgres, c.DBDriver)
	require.Equal(t, 5, c.ShareMaxFails)
	require.Equal(t, 15*time.Minute, c.ShareWindow)
	require.False(t, c.TLS())
	require.Empty(t, c.CORSOrigins)
}

func TestLoadServer_EnvThenFlags(t *testing.T) {
	env := envOf(map[string]string{
		"OB_DB_DRIVER":       "sqlite",
		"OB_DSN":             "/tmp/ob.db",
		"OB_CORS_ORIGINS":    "https://a.example, ,https://b.example",
		"OB_RPC_RPS":         "2.5",
		"OB_SHARE_MAX_FAILS": "3",
		"OB_SHARE_WINDOW":    "1m",
		"OB_HTTP_ADDR":       ":7000",
	})
	c, err := LoadServer([]string{"--http-addr", ":7001", "--share-max-fails", "4"}, env, io.Discard)
	require.NoError(t, err)
	require.Equal(t, DriverSQLite, c.DBDriver)
	require.Equal(t, "/tmp/ob.db", c.DSN)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSOrigins)
	require.Equal(t, 2.5, c.RPCRPS)
	require.Equal(t, time.Minute, c.ShareWindow)
	require.Equal(t, ":7001", c.HTTPAddr, "flag wins over env")
	require.Equal(t, 4, c.ShareMaxFails)
}

func TestLoadServer_BadEnv(t *testing.T) {
	_, err := LoadServer(nil, envOf(map[string]string{
		"OB_SHARE_MAX_FAILS": "many",
		"OB_SHARE_BLOCK":     "forever",
	}), io.Discard)
	require.ErrorContains(t, err, "OB_SHARE_MAX_FAILS")
	require.ErrorContains(t, err, "OB_SHARE_BLOCK")
}

func TestLoadServer_Validate(t *testing.T) {
	_, err := LoadServer([]string{"--db-driver", "mysql"}, envOf(nil), io.Discard)
	require.ErrorContains(t, err, `unknown db driver "mysql"`)

	_, err = LoadServer([]string{"--tls-cert", "cert.pem"}, envOf(nil), io.Discard)
	require.ErrorContains(t, err, "set together")

	_, err = LoadServer([]string{"--db-driver", "sqlite", "--dsn", ":memory:", "--share-window", "0"}, envOf(nil), io.Discard)
	require.ErrorContains(t, err, "share-window must be positive")

	_, err = LoadServer(nil, envOf(map[string]string{"OB_SHARE_WINDOW": "-1m", "OB_SHARE_BLOCK": "0s"}), io.Discard)
	require.ErrorContains(t, err, "share-window must be positive")
	require.ErrorContains(t, err, "share-block must be positive")

	_, err = LoadServer([]string{"--rpc-burst", "0"}, envOf(nil), io.Discard)
	require.ErrorContains(t, err, "rpc-burst must be at least 1")

	_, err = LoadServer([]string{"--rpc-burst", "0", "--rpc-rps", "0"}, envOf(nil), io.Discard)
	require.NoError(t, err, "burst is irrelevant when rate limiting is off")

	c, err := LoadServer([]string{"--tls-cert", "cert.pem", "--tls-key", "key.pem"}, envOf(nil), io.Discard)
	require.NoError(t, err)
	require.True(t, c.TLS())
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, LoadDotEnv(""))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OB_TEST_DOTENV=from-file\n"), 0o600))
	t.Setenv("OB_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("OB_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "from-file", os.Getenv("OB_TEST_DOTENV"))
}
