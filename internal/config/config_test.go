package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/mockup-tools-mcp/internal/hierarchy"
	"github.com/ironsheep/mockup-tools-mcp/internal/logging"
	"github.com/ironsheep/mockup-tools-mcp/internal/pattern"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, hierarchy.DefaultOptions(), cfg.HierarchyOptions())
	assert.Equal(t, pattern.DefaultMinConfidence, cfg.MatchOptions().MinConfidence)
	assert.Equal(t, 1, cfg.SegmentOptions().WordGap)
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	t.Setenv(logging.EnvLevel, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv(logging.EnvLevel, "")
	path := writeFile(t, "mockup.yaml", `
log_level: debug
segment:
  word_gap: 2
match:
  min_confidence: 0.7
hierarchy:
  gap: 3
  label_sides: [above]
grid:
  styles: [single, rounded]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Segment.WordGap)
	assert.Equal(t, 0.7, cfg.Match.MinConfidence)
	assert.Equal(t, []hierarchy.Side{hierarchy.SideAbove}, cfg.HierarchyOptions().LabelSides)
	// untouched sections keep defaults
	assert.Equal(t, "text", cfg.Hierarchy.LabelType)
	assert.Equal(t, 4, cfg.Grid.TabWidth)

	g, err := cfg.Glyphs()
	require.NoError(t, err)
	assert.True(t, g.IsBoxGlyph('╭'))
	assert.False(t, g.IsBoxGlyph('═'))
}

func TestLoad_EnvOverridesLevel(t *testing.T) {
	t.Setenv(logging.EnvLevel, "WARN")
	cfg, err := Load(writeFile(t, "c.yaml", "log_level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_AcceptsEveryLoggingLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "warning", "error", "off", "disabled"} {
		t.Run(level, func(t *testing.T) {
			t.Setenv(logging.EnvLevel, level)
			cfg, err := Load("")
			require.NoError(t, err)
			_, err = logging.ParseLevel(cfg.LogLevel)
			assert.NoError(t, err)
		})
	}

	t.Setenv(logging.EnvLevel, "")
	cfg, err := Load(writeFile(t, "c.yaml", "log_level: Warning\n"))
	require.NoError(t, err)
	assert.Equal(t, "warning", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(logging.EnvLevel, "")
	tests := []struct {
		name string
		body string
		want string
	}{
		{"confidence", "match:\n  min_confidence: 1.5\n", "MinConfidence"},
		{"side", "hierarchy:\n  label_sides: [behind]\n", "LabelSides"},
		{"style", "grid:\n  styles: [dotted]\n", "Styles"},
		{"level", "log_level: chatty\n", "LogLevel"},
		{"bracket", "grid:\n  brackets: [\"[[]\"]\n", "Brackets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(writeFile(t, "broken.yaml", "segment: [unclosed"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadPatterns(t *testing.T) {
	extra := writeFile(t, "extra.pat", "track extra\npattern slider\n tag kind = text\n trap text ~ /^<-+o-+>$/\nend\nexecute\n")
	cfg := Default()
	cfg.Patterns = []string{extra}

	reg := pattern.NewRegistry()
	require.NoError(t, cfg.LoadPatterns(reg))
	_, ok := reg.Lookup("extra.slider")
	assert.True(t, ok)
	_, ok = reg.Lookup("builtin.button")
	assert.True(t, ok)

	bad := writeFile(t, "bad.pat", "track oops\n")
	cfg.Patterns = []string{bad}
	err := cfg.LoadPatterns(pattern.NewRegistry())
	var de *pattern.DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, bad, de.Source)
}

func TestPreviewOptions(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "preview:\n  scale: 2\n  show_grid: true\n  grid_color: \"#FF000080\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	opts := cfg.PreviewOptions()
	assert.Equal(t, 2.0, opts.Scale)
	assert.True(t, opts.ShowGrid)
	assert.True(t, opts.ShowIDs)
	assert.Equal(t, "#FF000080", opts.GridColor)

	cfg.Preview.GridColor = "red"
	assert.Error(t, cfg.Validate())
}
