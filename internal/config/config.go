// Package config loads nlsearch settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search       Search
	Optimization struct {
		WorkerCount int `env:"OPT_WORKER_COUNT" envDefault:"10"`
		// Finished jobs are dropped once they are older than JobRetention, or
		// oldest first when MaxJobs are held.
		JobRetention time.Duration `env:"OPT_JOB_RETENTION" envDefault:"1h"`
		MaxJobs      int           `env:"OPT_MAX_JOBS" envDefault:"1000"`
	}
}

// Search holds the defaults for a single minimization run.
type Search struct {
	Method        string        `env:"SEARCH_METHOD" envDefault:"gradient"`
	Objective     string        `env:"SEARCH_OBJECTIVE" envDefault:"bowl"`
	StartX        float64       `env:"SEARCH_START_X" envDefault:"1.0"`
	StartY        float64       `env:"SEARCH_START_Y" envDefault:"1.0"`
	Tolerance     float64       `env:"SEARCH_TOLERANCE" envDefault:"0.01"`
	StepFactor    float64       `env:"SEARCH_STEP_FACTOR" envDefault:"0.1"`
	Steps         int           `env:"SEARCH_STEPS" envDefault:"30"`
	MaxIterations int           `env:"SEARCH_MAX_ITERATIONS" envDefault:"10000"`
	Timeout       time.Duration `env:"SEARCH_TIMEOUT" envDefault:"30s"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	if cfg.Optimization.WorkerCount < 1 {
		return nil, fmt.Errorf("OPT_WORKER_COUNT must be at least 1, got %d", cfg.Optimization.WorkerCount)
	}
	if cfg.Optimization.MaxJobs < cfg.Optimization.WorkerCount {
		return nil, fmt.Errorf("OPT_MAX_JOBS must be at least OPT_WORKER_COUNT (%d), got %d",
			cfg.Optimization.WorkerCount, cfg.Optimization.MaxJobs)
	}
	if cfg.Optimization.JobRetention < 0 {
		return nil, fmt.Errorf("OPT_JOB_RETENTION must not be negative, got %s", cfg.Optimization.JobRetention)
	}
	if cfg.Search.Timeout <= 0 {
		return nil, fmt.Errorf("SEARCH_TIMEOUT must be positive, got %s", cfg.Search.Timeout)
	}

	return cfg, nil
}
