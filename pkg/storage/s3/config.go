package s3

import (
	"fmt"

	"github.com/williamokano/gfs_rotator/pkg/storage"
)

// Config holds S3 configuration
type Config struct {
	Endpoint        string // Optional: MinIO, LocalStack
	Region          string // AWS region
	Bucket          string // S3 bucket name
	Prefix          string // Object key prefix
	AccessKeyID     string // Optional: falls back to the default credential chain
	SecretAccessKey string
	ForcePathStyle  bool // Required by MinIO and LocalStack
}

func parseConfig(options map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	var ok bool
	if cfg.Region, ok = options["region"].(string); !ok || cfg.Region == "" {
		return nil, storage.MissingOption("region")
	}
	if cfg.Bucket, ok = options["bucket"].(string); !ok || cfg.Bucket == "" {
		return nil, storage.MissingOption("bucket")
	}

	cfg.Endpoint, _ = options["endpoint"].(string)
	cfg.Prefix, _ = options["prefix"].(string)
	cfg.AccessKeyID, _ = options["access_key_id"].(string)
	cfg.SecretAccessKey, _ = options["secret_access_key"].(string)
	cfg.ForcePathStyle, _ = options["force_path_style"].(bool)

	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, fmt.Errorf("access_key_id and secret_access_key must be set together: %w", storage.ErrInvalidConfig)
	}

	return cfg, nil
}
