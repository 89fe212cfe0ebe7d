package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"collector/meta"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel = "COLLECTOR_LOG_LEVEL"
	EnvSeed     = "COLLECTOR_SEED"
	EnvMaxSteps = "COLLECTOR_MAX_STEPS"
)

// Settings are runtime defaults read from the process environment.
type Settings struct {
	LogLevel zerolog.Level
	Seed     uint64
	MaxSteps int
}

func DefaultSettings() Settings {
	return Settings{
		LogLevel: zerolog.InfoLevel,
		Seed:     meta.DEFAULT_SEED,
		MaxSteps: meta.MAX_STEPS,
	}
}

// LoadEnv loads the dotenv files (missing files are ignored) and reads the
// settings from the environment. Variables already set take precedence over
// the files.
func LoadEnv(files ...string) (Settings, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	settings := DefaultSettings()
	if v := os.Getenv(EnvLogLevel); v != "" {
		level, err := zerolog.ParseLevel(v)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		settings.LogLevel = level
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvSeed, err)
		}
		settings.Seed = seed
	}
	if v := os.Getenv(EnvMaxSteps); v != "" {
		steps, err := strconv.Atoi(v)
		if err != nil || steps <= 0 {
			return Settings{}, fmt.Errorf("%s must be a positive integer, got %q", EnvMaxSteps, v)
		}
		settings.MaxSteps = steps
	}
	return settings, nil
}
