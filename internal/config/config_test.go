package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  path: /tmp/test.db\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Ingest.AutoResolve)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("MEDREC_DB_PATH", "/var/lib/medrec.db")
	cfg, err := Load(writeConfig(t, "database:\n  path: ${MEDREC_DB_PATH}\n"))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/medrec.db", cfg.Database.Path)
}

func TestLoadRejectsEnabledEventsWithoutURL(t *testing.T) {
	_, err := Load(writeConfig(t, "events:\n  enabled: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats_url")
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEventDefaultsWhenEnabled(t *testing.T) {
	cfg, err := Load(writeConfig(t, "events:\n  enabled: true\n  nats_url: nats://localhost:4222\n"))
	require.NoError(t, err)
	assert.Equal(t, "medrecpro.ingest.completed", cfg.Events.Subject)
}

func TestNormalizeLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel("DEBUG"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("bogus"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat("json"))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
}

func TestInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "medrecpro.db", cfg.Database.Path)
}
