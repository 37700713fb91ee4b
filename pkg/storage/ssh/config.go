package ssh

import (
	"fmt"

	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Config holds SFTP destination configuration
type Config struct {
	Host          string
	Port          int // Default: 22
	User          string
	Password      string // Optional
	KeyPath       string // Optional: path to private key
	KeyPassphrase string // Optional
	KnownHosts    string // Optional: known_hosts file used to verify the server key
	RemotePath    string // Base directory on remote server
}

func parseConfig(options map[string]interface{}) (*Config, error) {
	cfg := &Config{Port: 22}

	var ok bool
	if cfg.Host, ok = options["host"].(string); !ok || cfg.Host == "" {
		return nil, storage.MissingOption("host")
	}
	if cfg.User, ok = options["user"].(string); !ok || cfg.User == "" {
		return nil, storage.MissingOption("user")
	}
	if cfg.RemotePath, ok = options["remote_path"].(string); !ok || cfg.RemotePath == "" {
		return nil, storage.MissingOption("remote_path")
	}

	cfg.Password, _ = options["password"].(string)
	cfg.KeyPath, _ = options["key_path"].(string)
	cfg.KeyPassphrase, _ = options["key_passphrase"].(string)
	cfg.KnownHosts, _ = options["known_hosts"].(string)

	// JSON numbers decode as float64
	switch v := options["port"].(type) {
	case float64:
		cfg.Port = int(v)
	case int:
		cfg.Port = v
	case int64:
		cfg.Port = int(v)
	}

	if cfg.Password == "" && cfg.KeyPath == "" {
		return nil, fmt.Errorf("one of password or key_path is required: %w", storage.ErrInvalidConfig)
	}

	return cfg, nil
}
