package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"SCM_HTTP_ADDR", "SCM_METRICS_NAMESPACE", "POSTGRES_DSN", "POSTGRES_MAX_CONNS", "CLICKHOUSE_DSN",
	"SCM_USE_MEMORY", "SCM_RANDOM_SEED", "SCM_SHUTDOWN_TIMEOUT_SEC", "LOG_LEVEL", "LOG_PRETTY",
}

// clearEnv blanks every config variable for the test and runs it in an
// empty directory so no stray .env file is picked up.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "scm_simulation", cfg.MetricsNamespace)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Empty(t, cfg.ClickhouseDSN)
	assert.True(t, cfg.UseMemory)
	assert.Zero(t, cfg.RandomSeed)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCM_HTTP_ADDR", "127.0.0.1:9090")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost/scm")
	t.Setenv("POSTGRES_MAX_CONNS", "8")
	t.Setenv("SCM_USE_MEMORY", "false")
	t.Setenv("SCM_RANDOM_SEED", "42")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres://u:p@localhost/scm", cfg.PostgresDSN)
	assert.Equal(t, int32(8), cfg.PostgresMaxConns)
	assert.False(t, cfg.UseMemory)
	assert.Equal(t, uint64(42), cfg.RandomSeed)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCM_RANDOM_SEED", "-1")
	t.Setenv("SCM_SHUTDOWN_TIMEOUT_SEC", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.RandomSeed)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	// Setenv registers restoration; Unsetenv lets godotenv fill the value
	os.Unsetenv("SCM_METRICS_NAMESPACE")

	dir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SCM_METRICS_NAMESPACE=classroom\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "classroom", cfg.MetricsNamespace)
}

func TestValidate(t *testing.T) {
	valid := Config{HTTPAddr: ":8080", UseMemory: true, LogLevel: "info"}
	assert.NoError(t, valid.Validate())

	noAddr := valid
	noAddr.HTTPAddr = ""
	assert.Error(t, noAddr.Validate())

	noDSN := valid
	noDSN.UseMemory = false
	assert.ErrorContains(t, noDSN.Validate(), "POSTGRES_DSN")

	negConns := valid
	negConns.PostgresMaxConns = -1
	assert.ErrorContains(t, negConns.Validate(), "POSTGRES_MAX_CONNS")

	badLevel := valid
	badLevel.LogLevel = "verbose"
	assert.ErrorContains(t, badLevel.Validate(), "LOG_LEVEL")
}
