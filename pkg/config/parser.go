package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ParseConfig reads a configuration file, validates it against the schema,
// applies environment overrides and checks the result. The format is chosen
// by extension: .json, .yaml/.yml or .toml.
func ParseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	document, err := toJSON(filepath.Ext(configFile), data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateDocument(document); err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(document, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := ApplyEnv(&config, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// toJSON decodes a document of the given format into a generic value and
// re-encodes it as JSON, so every format goes through the same schema
func toJSON(ext string, data []byte) ([]byte, error) {
	var doc map[string]interface{}

	switch strings.ToLower(ext) {
	case ".json", "":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (expected .json, .yaml, .yml or .toml)", ext)
	}

	if doc == nil {
		doc = map[string]interface{}{}
	}

	return json.Marshal(doc)
}
