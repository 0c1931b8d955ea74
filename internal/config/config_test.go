package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/fsm/internal/config"
)

type requiredConfig struct {
	Required string `env:"FSM_TEST_REQUIRED,required"`
}

func TestLoadSettings_Defaults(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	for _, key := range []string{
		"FSM_DEBUGGING", "FSM_STEP_DELAY", "FSM_RUN_FOR", "FSM_LOG_LEVEL",
		"FSM_LOG_FORMAT", "FSM_JOURNAL_PATH", "FSM_GRAPH_FORMAT",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	s, err := config.LoadSettings()
	require.NoError(t, err)

	assert.False(t, s.Debugging)
	assert.Equal(t, 500*time.Millisecond, s.StepDelay)
	assert.Equal(t, 5*time.Second, s.RunFor)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Empty(t, s.JournalPath)
	assert.Empty(t, s.GraphFormat)
}

func TestLoadSettings_FromEnvironment(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	t.Setenv("FSM_DEBUGGING", "true")
	t.Setenv("FSM_STEP_DELAY", "1s")
	t.Setenv("FSM_RUN_FOR", "0s")
	t.Setenv("FSM_LOG_FORMAT", "json")
	t.Setenv("FSM_JOURNAL_PATH", "events.db")
	t.Setenv("FSM_GRAPH_FORMAT", "mermaid")

	s, err := config.LoadSettings()
	require.NoError(t, err)

	assert.True(t, s.Debugging)
	assert.Equal(t, time.Second, s.StepDelay)
	assert.Zero(t, s.RunFor)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "events.db", s.JournalPath)
	assert.Equal(t, "mermaid", s.GraphFormat)
}

func TestLoad_Cached(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	t.Setenv("FSM_LOG_LEVEL", "debug")
	first, err := config.LoadSettings()
	require.NoError(t, err)

	t.Setenv("FSM_LOG_LEVEL", "error")
	second, err := config.LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "debug", first.LogLevel)
	assert.Equal(t, first, second, "a loaded type is parsed only once")
}

func TestLoad_Errors(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	assert.ErrorIs(t, config.Load[config.Settings](nil), config.ErrNilPointer)

	t.Setenv("FSM_STEP_DELAY", "soon")
	_, err := config.LoadSettings()
	assert.ErrorIs(t, err, config.ErrParsingConfig)

	var req requiredConfig
	assert.ErrorIs(t, config.Load(&req), config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad(&req) })
}
