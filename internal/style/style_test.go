package style

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/docstyler/internal/blocks"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	sizes := []int{16, 14, 12, 11, 10, 10, 10}
	colors := []string{"E97031", "EE0000", "EE0000", "00AF50", "006FC0", "E97031", "9F2B92"}
	for i, lv := range cfg.Levels {
		assert.Equal(t, "Aptos", lv.Font)
		assert.Equal(t, sizes[i], lv.SizePt, "level %d", i)
		assert.Equal(t, colors[i], lv.Color, "level %d", i)
		assert.True(t, lv.Bold)
	}
	assert.Equal(t, 20, cfg.Body.HalfPoints())
	assert.True(t, cfg.Placeholder.Italic)
	assert.Equal(t, "808080", cfg.Placeholder.Color)
	assert.Equal(t, 12.7, cfg.Page.MarginLeftMm)
}

func TestMapColor(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "00AF50", cfg.MapColor("008000"))
	assert.Equal(t, "EE0000", cfg.MapColor("#ff0000"))
	assert.Equal(t, "006FC0", cfg.MapColor("0000ff"))
	assert.Equal(t, "000000", cfg.MapColor("000000"))
	assert.Equal(t, "ABCDEF", cfg.MapColor("abcdef"), "unknown colors pass through uppercased")
}

func TestHeading(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 14, cfg.Heading(blocks.Heading(1)).SizePt)
	assert.Equal(t, "9F2B92", cfg.Heading(blocks.Heading(6)).Color)
	assert.Equal(t, cfg.Body, cfg.Heading(blocks.LevelBody))
	assert.Equal(t, cfg.Body, cfg.Heading(blocks.LevelUnset))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("overlay", func(t *testing.T) {
		path := filepath.Join(dir, "style.yaml")
		require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(`
body:
  font: Calibri
  size_pt: 11
  color: "#333333"
page:
  width_mm: 216
  height_mm: 279
color_map:
  "#123456": "00af50"
`)), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "Calibri", cfg.Body.Font)
		assert.Equal(t, 11, cfg.Body.SizePt)
		assert.Equal(t, "333333", cfg.Body.Color)
		assert.Equal(t, 216.0, cfg.Page.WidthMm)
		assert.Equal(t, 12.7, cfg.Page.MarginLeftMm, "unset keys keep defaults")
		assert.Equal(t, Default().Levels, cfg.Levels)
		assert.Equal(t, "00AF50", cfg.MapColor("123456"))
		assert.Equal(t, "EE0000", cfg.MapColor("FF0000"), "default entries are kept")
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("placeholder:\n  size_pt: 0\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("short levels list", func(t *testing.T) {
		path := filepath.Join(dir, "levels.yaml")
		require.NoError(t, os.WriteFile(path, []byte("levels:\n  - font: Aptos\n    size_pt: 20\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}
