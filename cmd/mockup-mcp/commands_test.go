package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MOCKUP_MCP_LOG_LEVEL", "off")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParse_StdinTree(t *testing.T) {
	out, err := execute(t, "[Yes] [No]\n", "parse")
	require.NoError(t, err)
	assert.Equal(t, "#0 button label=\"Yes\" @0,0 5x1\n#1 button label=\"No\" @6,0 4x1\n", out)
}

func TestParse_FileFormats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.txt")
	src := "┌───┐\n│OK │\n└───┘"
	require.NoError(t, os.WriteFile(path, []byte(src+"\n"), 0o644))

	out, err := execute(t, "", "parse", "--format", "text", path)
	require.NoError(t, err)
	assert.Equal(t, src+"\n", out)

	out, err = execute(t, "", "parse", "-f", "json", path)
	require.NoError(t, err)
	var m struct {
		Components []struct {
			Type string `json:"type"`
		} `json:"components"`
		Roots []int `json:"roots"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	require.NotEmpty(t, m.Components)
	assert.Equal(t, "button", m.Components[0].Type)
	assert.Equal(t, []int{0}, m.Roots)
}

func TestParse_ExtraPatterns(t *testing.T) {
	dir := t.TempDir()
	pat := filepath.Join(dir, "slider.pat")
	require.NoError(t, os.WriteFile(pat, []byte("track extra\npattern slider\n  tag kind = text\n  trap text ~ /^<-+o-+>$/\nend\nexecute\n"), 0o644))

	out, err := execute(t, "<--o---->\n", "parse", "-p", pat)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "#0 slider"), out)
}

func TestParse_Errors(t *testing.T) {
	_, err := execute(t, "", "parse", "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "", "parse", "/nonexistent/mockup.txt")
	assert.ErrorContains(t, err, "failed to read")

	_, err = execute(t, "", "parse", "--config", "/nonexistent/config.yaml")
	assert.ErrorContains(t, err, "config")

	_, err = execute(t, "", "parse", "a", "b")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mockup-mcp dev")
	assert.Contains(t, out, "Git commit: unknown")
}
