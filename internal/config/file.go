package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML form of the client configuration.
type File struct {
	AppName  string      `yaml:"app_name"`
	Env      string      `yaml:"env"`
	LogLevel string      `yaml:"log_level"`
	API      FileAPI     `yaml:"api"`
	Storage  FileStorage `yaml:"storage"`
}

type FileAPI struct {
	// URL is the backend base URL every request path is joined to
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type FileStorage struct {
	Dir string `yaml:"dir"`
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[config LoadFile] read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("[config LoadFile] parse %s: %w", path, err)
	}
	return &f, nil
}
