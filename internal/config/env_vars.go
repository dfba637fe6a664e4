package config

import (
	"os"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	envVar            = "ENV"
	logLevelVar       = "LOG_LEVEL"
	apiURLVar         = "API_URL"
	requestTimeoutVar = "REQUEST_TIMEOUT"
	storageDirVar     = "STORAGE_DIR"

	defaultAppName        = "Scenario Client"
	defaultAPIURL         = "http://localhost:8000"
	defaultRequestTimeout = 60 * time.Second
)

type EnvVars struct {
	file *File
}

var _ EnvConfig = EnvVars{}
var _ APIConfig = EnvVars{}
var _ StorageConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, e.fromFile(func(f *File) string { return f.AppName }, defaultAppName))
}

func (e EnvVars) GetEnv() string {
	return GetEnv(envVar, e.fromFile(func(f *File) string { return f.Env }, "DEV"))
}

func (e EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, e.fromFile(func(f *File) string { return f.LogLevel }, "info"))
}

// GetAPIURL returns the backend base URL (e.g., "https://api.example.com")
func (e EnvVars) GetAPIURL() string {
	return GetEnv(apiURLVar, e.fromFile(func(f *File) string { return f.API.URL }, defaultAPIURL))
}

func (e EnvVars) GetRequestTimeout() time.Duration {
	if value := os.Getenv(requestTimeoutVar); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	if e.file != nil && e.file.API.Timeout > 0 {
		return e.file.API.Timeout
	}
	return defaultRequestTimeout
}

func (e EnvVars) GetStorageDir() string {
	return GetEnv(storageDirVar, e.fromFile(func(f *File) string { return f.Storage.Dir }, ""))
}

func (e EnvVars) fromFile(get func(*File) string, defaultValue string) string {
	if e.file == nil {
		return defaultValue
	}
	if v := get(e.file); v != "" {
		return v
	}
	return defaultValue
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
