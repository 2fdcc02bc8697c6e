package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "gradient", cfg.Search.Method)
	assert.Equal(t, "bowl", cfg.Search.Objective)
	assert.Equal(t, 1.0, cfg.Search.StartX)
	assert.Equal(t, 1.0, cfg.Search.StartY)
	assert.Equal(t, 0.01, cfg.Search.Tolerance)
	assert.Equal(t, 0.1, cfg.Search.StepFactor)
	assert.Equal(t, 30, cfg.Search.Steps)
	assert.Equal(t, 10000, cfg.Search.MaxIterations)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 10, cfg.Optimization.WorkerCount)
	assert.Equal(t, time.Hour, cfg.Optimization.JobRetention)
	assert.Equal(t, 1000, cfg.Optimization.MaxJobs)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SEARCH_METHOD", "edge")
	t.Setenv("SEARCH_OBJECTIVE", "2")
	t.Setenv("SEARCH_START_X", "-0.5")
	t.Setenv("SEARCH_STEPS", "12")
	t.Setenv("SEARCH_TIMEOUT", "2s")
	t.Setenv("OPT_WORKER_COUNT", "3")
	t.Setenv("OPT_MAX_JOBS", "50")
	t.Setenv("OPT_JOB_RETENTION", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "edge", cfg.Search.Method)
	assert.Equal(t, "2", cfg.Search.Objective)
	assert.Equal(t, -0.5, cfg.Search.StartX)
	assert.Equal(t, 12, cfg.Search.Steps)
	assert.Equal(t, 2*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 3, cfg.Optimization.WorkerCount)
	assert.Equal(t, 50, cfg.Optimization.MaxJobs)
	assert.Equal(t, 10*time.Minute, cfg.Optimization.JobRetention)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"malformed float", "SEARCH_TOLERANCE", "small"},
		{"malformed int", "SEARCH_STEPS", "many"},
		{"no workers", "OPT_WORKER_COUNT", "0"},
		{"zero timeout", "SEARCH_TIMEOUT", "0s"},
		{"job cap below workers", "OPT_MAX_JOBS", "2"},
		{"negative retention", "OPT_JOB_RETENTION", "-1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
