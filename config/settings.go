// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Storage path resolution

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	Storage  StorageConfig
	Critique CritiqueConfig
}

// StorageConfig holds storage location configuration.
type StorageConfig struct {
	// Dir is the base directory for session files and the archive.
	Dir string
	// DBPath is the SQLite session archive path.
	DBPath string
}

// CritiqueConfig holds critique gateway configuration.
type CritiqueConfig struct {
	Provider    string
	Model       string
	MaxTokens   uint32
	Temperature float64
	Timeout     time.Duration
}

// Environment variable names.
const (
	EnvStorageDir          = "SEQTHINK_STORAGE_DIR"
	EnvDBPath              = "SEQTHINK_DB"
	EnvCritiqueProvider    = "CRITIQUE_PROVIDER"
	EnvCritiqueModel       = "CRITIQUE_MODEL"
	EnvCritiqueMaxTokens   = "CRITIQUE_MAX_TOKENS"
	EnvCritiqueTemperature = "CRITIQUE_TEMPERATURE"
	EnvCritiqueTimeout     = "CRITIQUE_TIMEOUT_SECONDS"
)

// New creates settings from environment variables.
// Returns an error if environment variables contain invalid values.
func New() (Settings, error) {
	dir := os.Getenv(EnvStorageDir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Settings{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".seqthink")
	}

	dbPath := os.Getenv(EnvDBPath)
	if dbPath == "" {
		dbPath = filepath.Join(dir, "sessions.db")
	}

	provider := os.Getenv(EnvCritiqueProvider)
	if provider == "" {
		provider = "openai"
	}

	maxTokens, err := getEnvUint32(EnvCritiqueMaxTokens, 500)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64(EnvCritiqueTemperature, 0.7)
	if err != nil {
		return Settings{}, err
	}

	timeoutSeconds, err := getEnvInt(EnvCritiqueTimeout, 15)
	if err != nil {
		return Settings{}, err
	}
	if timeoutSeconds <= 0 {
		return Settings{}, fmt.Errorf("invalid value for %s: must be positive, got %d", EnvCritiqueTimeout, timeoutSeconds)
	}

	return Settings{
		Storage: StorageConfig{
			Dir:    dir,
			DBPath: dbPath,
		},
		Critique: CritiqueConfig{
			Provider:    provider,
			Model:       os.Getenv(EnvCritiqueModel),
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Timeout:     time.Duration(timeoutSeconds) * time.Second,
		},
	}, nil
}

// ResolveSessionPath resolves a session file path. Relative paths land
// under the storage directory; absolute paths are used as-is.
func (s Settings) ResolveSessionPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Storage.Dir, path)
}

// EnsureStorageDir creates the storage directory if it doesn't exist.
func (s Settings) EnsureStorageDir() error {
	if err := os.MkdirAll(s.Storage.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	return nil
}

// Environment variable helpers with proper error handling

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}
