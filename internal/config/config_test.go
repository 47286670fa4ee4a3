package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
archive_dir: /data/strokes
pen:
  width: 4
  color: "#ff0000"
share:
  port: 9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/data/strokes", cfg.ArchiveDir)
	assert.Equal(t, float32(4), cfg.Pen.Width)
	assert.Equal(t, 9000, cfg.Share.Port)
	// untouched
	assert.Equal(t, float32(1024), cfg.Window.Width)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"level":     "log_level: loud\n",
		"pen width": "pen:\n  width: 0\n",
		"color":     "pen:\n  color: blue\n",
		"port":      "share:\n  port: 70000\n",
		"window":    "window:\n  width: 10\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(writeConfig(t, "pen: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_ErrorNamesYAMLField(t *testing.T) {
	_, err := Load(writeConfig(t, "share:\n  port: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPenRGBA(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, Pen{Color: "#ff0000"}.RGBA())
	assert.Equal(t, color.NRGBA{G: 0xff, B: 0xff, A: 0xff}, Pen{Color: "#0ff"}.RGBA())
	assert.Equal(t, color.NRGBA{A: 0xff}, Pen{Color: "nope"}.RGBA())
}
