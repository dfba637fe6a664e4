package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIURL() string
	GetRequestTimeout() time.Duration
}

type StorageConfig interface {
	// GetStorageDir returns the directory holding the durable session mirror.
	// An empty value keeps the session in memory for the life of the process.
	GetStorageDir() string
}

type mainConfig struct {
	EnvVars
}

// New returns a Config built from environment variables and defaults.
func New() Config {
	return mainConfig{}
}

// Load returns a Config layered as defaults < YAML file < environment variables.
// An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return mainConfig{EnvVars: EnvVars{file: file}}, nil
}
