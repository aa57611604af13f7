package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultsAutoPrefersPostgres(t *testing.T) {
	cfg := Config{DBDriver: "auto", PostgresDSN: "postgres://localhost/curio", SQLitePath: "x.db", SearchResultLimit: 20}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "postgres", cfg.DBDriver)
}

func TestResolveDefaultsAutoFallsBackToSQLite(t *testing.T) {
	cfg := Config{DBDriver: "auto", SQLitePath: "x.db", SearchResultLimit: 20}
	require.NoError(t, cfg.ResolveDefaults())
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestResolveDefaultsRejectsUnknownDriver(t *testing.T) {
	cfg := Config{DBDriver: "spanner", SearchResultLimit: 20}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaultsRequiresDSNForPostgres(t *testing.T) {
	cfg := Config{DBDriver: "postgres", SearchResultLimit: 20}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestResolveDefaultsRejectsNonPositiveLimit(t *testing.T) {
	cfg := Config{DBDriver: "sqlite", SQLitePath: "x.db", SearchResultLimit: 0}
	assert.Error(t, cfg.ResolveDefaults())
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("CURIO_BACKEND_HTTP_PORT", "9191")
	t.Setenv("CURIO_BACKEND_SQLITE_PATH", t.TempDir()+"/curio.db")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 20, cfg.SearchResultLimit)
}
