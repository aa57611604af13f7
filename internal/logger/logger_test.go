package logger

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout runs f with os.Stdout redirected to a pipe and returns the output.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()

	_ = w.Close()
	b, _ := io.ReadAll(r)
	_ = r.Close()
	return string(b)
}

func TestLoggerIncludesStackAndServiceOnError(t *testing.T) {
	out := captureStdout(t, func() {
		log := New("curio-backend")
		log.Error().Stack().Err(errors.New("boom")).Msg("something failed")
	})

	var line string
	for _, l := range strings.Split(out, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
		}
	}
	require.NotEmpty(t, line, "no output captured")

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &payload), "invalid json log: %s", line)

	assert.Equal(t, "curio-backend", payload["service"])
	assert.Equal(t, "error", payload["level"])
	assert.Contains(t, payload, "stack")
}

func TestLoggerHonorsLevelFromEnv(t *testing.T) {
	t.Setenv("CURIO_BACKEND_LOG_LEVEL", "warn")
	out := captureStdout(t, func() {
		log := New("curio-backend")
		log.Info().Msg("suppressed")
		log.Warn().Msg("emitted")
	})

	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "emitted")
}
