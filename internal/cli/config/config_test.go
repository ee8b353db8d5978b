package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenguyenthanh/sqltyper/internal/cli/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/postgres", cfg.DatabaseURL)
	assert.Equal(t, "text", cfg.Output)
	assert.Equal(t, 4, cfg.Jobs)
	assert.False(t, cfg.Verbose)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqltyper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"database_url: postgres://db.example.com/app\noutput: json\njobs: 2\n"), 0o644))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://db.example.com/app", cfg.DatabaseURL)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 2, cfg.Jobs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sqltyper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database_url: postgres://from-file/app\n"), 0o644))

	t.Setenv("SQLTYPER_DATABASE_URL", "postgres://from-env/app")

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-env/app", cfg.DatabaseURL)
}

func TestLoadFlagsWinOverEnv(t *testing.T) {
	t.Setenv("SQLTYPER_OUTPUT", "text")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("database-url", "", "")
	flags.String("output", "", "")
	require.NoError(t, flags.Parse([]string{"--output", "json"}))

	cfg, err := config.Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
	// Unset flags must not clobber other sources.
	assert.Equal(t, "postgres://localhost:5432/postgres", cfg.DatabaseURL)
}

func TestLoadRejectsBadOutput(t *testing.T) {
	t.Setenv("SQLTYPER_OUTPUT", "yamlish")
	_, err := config.Load("", nil)
	require.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}
