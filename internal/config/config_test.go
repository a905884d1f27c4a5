package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromSetupFile(t *testing.T) {
	dir := t.TempDir()
	setup := filepath.Join(dir, "acsetup.cfg")
	require.NoError(t, os.WriteFile(setup, []byte(`
[language]
translation = French
fallback = default
format = trs
log_untranslated = 1

[game]
uniqueid = 1234
name = Demo Quest
`), 0o644))

	t.Setenv("AGS_DATA_DIR", dir)
	t.Setenv("AGS_SETUP_FILE", setup)

	cfg := Load()
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, dir, cfg.TextPackDir)
	assert.Equal(t, "French", cfg.Language)
	assert.Empty(t, cfg.FallbackLanguage)
	assert.Equal(t, "trs", cfg.PackFormat)
	assert.True(t, cfg.LogUntranslated)
	assert.Equal(t, 1234, cfg.GameUniqueID)
	assert.Equal(t, "Demo Quest", cfg.GameName)
	assert.True(t, cfg.HasGameIdentity())
}

func TestEnvironmentOverridesSetup(t *testing.T) {
	dir := t.TempDir()
	setup := filepath.Join(dir, "acsetup.cfg")
	require.NoError(t, os.WriteFile(setup, []byte("[language]\ntranslation = French\n"), 0o644))

	t.Setenv("AGS_SETUP_FILE", setup)
	t.Setenv("AGS_LANGUAGE", "German")
	t.Setenv("AGS_QUIT_ON_ERROR", "yes")
	t.Setenv("WORKER_COUNT", "not-a-number")

	cfg := Load()
	assert.Equal(t, "German", cfg.Language)
	assert.True(t, cfg.QuitOnError)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, "tra", cfg.PackFormat)
}

func TestLanguageFromSetup(t *testing.T) {
	assert.Empty(t, LanguageFromSetup("Default"))
	assert.Empty(t, LanguageFromSetup("  "))
	assert.Equal(t, "Italian", LanguageFromSetup(" Italian "))
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("ON", false))
	assert.False(t, parseBool("0", true))
	assert.True(t, parseBool("maybe", true))
	assert.False(t, parseBool("", false))
}
