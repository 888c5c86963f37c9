package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{Level: "info"})
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("alias", "foo").Msg("creating account alias")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "foo", entry["alias"])
	require.Equal(t, "creating account alias", entry["message"])
	require.Contains(t, entry, "time")
}

func TestNewDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{})
	require.NoError(t, err)

	logger.Info().Msg("quiet")
	require.Empty(t, buf.String())

	logger.Warn().Msg("loud")
	require.Contains(t, buf.String(), "loud")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Config{Level: "debug", Format: "console"})
	require.NoError(t, err)

	logger.Debug().Msg("console line")
	require.Contains(t, buf.String(), "console line")
	require.NotContains(t, buf.String(), `"message"`)
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Config{Level: "chatty"})
	require.ErrorContains(t, err, "unknown log level")

	_, err = New(&bytes.Buffer{}, Config{Format: "xml"})
	require.ErrorContains(t, err, "unknown log format")
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("OFF")
	require.NoError(t, err)
	require.Equal(t, zerolog.Disabled, lvl)
}
