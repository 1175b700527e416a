package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mitsuba-export/internal/config"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := write(t, "export.toml", `
scene = "room.json"
output = "out/room.xml"
split_files = true
ignore_background = false
texture_max_size = 1024
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "room.json", cfg.Scene)
	assert.True(t, cfg.SplitFiles)
	require.NotNil(t, cfg.IgnoreBackground)
	assert.False(t, *cfg.IgnoreBackground)
	assert.Equal(t, 1024, cfg.TextureMaxSize)
}

func TestLoadJSON(t *testing.T) {
	path := write(t, "export.json", `{"scene": "a.json", "export_ids": true, "workers": 3}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ExportIDs)
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	_, err := config.Load(write(t, "export.yaml", "scene: a"))
	assert.ErrorContains(t, err, "unsupported format")
}

func TestResolve(t *testing.T) {
	t.Setenv(config.EnvMitsubaDir, "/opt/mitsuba")
	yes := true

	cfg := config.Config{Scene: "scenes/room.json", SplitFiles: true}
	cfg.Resolve(config.Flags{ExportIDs: &yes, KeepBackground: &yes, AxisUp: "Z", AxisForward: "Y"})

	assert.Equal(t, filepath.Join("scenes", "room.xml"), cfg.Output)
	assert.Equal(t, "/opt/mitsuba", cfg.MitsubaDir)
	assert.True(t, cfg.ExportIDs)
	assert.True(t, cfg.SplitFiles, "unset flags keep file values")
	assert.Positive(t, cfg.Workers)

	exp := cfg.Export()
	assert.False(t, exp.IgnoreBackground)
	assert.Equal(t, "Y", exp.AxisForward)
	assert.Equal(t, "Z", exp.AxisUp)
	assert.Equal(t, cfg.Output, exp.Path)
}

func TestResolveDefaults(t *testing.T) {
	t.Setenv(config.EnvMitsubaDir, "")
	var cfg config.Config
	cfg.Resolve(config.Flags{Scene: "a.json"})

	exp := cfg.Export()
	assert.Equal(t, "-Z", exp.AxisForward)
	assert.Equal(t, "Y", exp.AxisUp)
	assert.True(t, exp.IgnoreBackground)
	assert.Equal(t, 256, exp.PreviewSize)
	assert.Empty(t, cfg.MitsubaDir)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := config.Config{Output: "a.xml"}
	assert.Error(t, cfg.Validate())
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(config.EnvMitsubaDir, "")
	os.Unsetenv(config.EnvMitsubaDir)
	env := write(t, ".env", "MITSUBA_DIR=/from/dotenv\n")
	require.NoError(t, config.LoadEnv(env))
	assert.Equal(t, "/from/dotenv", os.Getenv(config.EnvMitsubaDir))

	require.NoError(t, config.LoadEnv(filepath.Join(t.TempDir(), "missing.env")))
}
