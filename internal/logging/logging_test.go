package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel)
	log.Debug().Msg("hidden")
	log.Info().Int("components", 3).Msg("built")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var event map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &event))
	assert.Equal(t, "built", event["message"])
	assert.Equal(t, "mockup-mcp", event["app"])
	assert.Equal(t, float64(3), event["components"])
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	log, err := FromEnv("debug")
	require.NoError(t, err)
	assert.Equal(t, zerolog.ErrorLevel, log.GetLevel())

	t.Setenv(EnvLevel, "nonsense")
	_, err = FromEnv("info")
	assert.Error(t, err)
}
