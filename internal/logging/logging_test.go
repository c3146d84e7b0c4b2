package logging_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-clinic-console/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.SetupWriter(&buf, "PROD", "warn")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "session").Msg("visible")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"component":"session"`)
	require.Contains(t, buf.String(), `"level":"warn"`)
}

func TestSetupWriterUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	_ = logging.SetupWriter(&buf, "PROD", "chatty")
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
