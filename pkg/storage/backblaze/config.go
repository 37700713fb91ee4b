package backblaze

import "github.com/williamokano/gfs_rotator/pkg/storage"

// Config holds Backblaze B2 configuration
type Config struct {
	AccountID      string // Key ID of an application key
	ApplicationKey string
	BucketName     string
	Prefix         string
}

func parseConfig(options map[string]interface{}) (*Config, error) {
	cfg := &Config{}

	var ok bool
	if cfg.AccountID, ok = options["account_id"].(string); !ok || cfg.AccountID == "" {
		return nil, storage.MissingOption("account_id")
	}
	if cfg.ApplicationKey, ok = options["application_key"].(string); !ok || cfg.ApplicationKey == "" {
		return nil, storage.MissingOption("application_key")
	}
	if cfg.BucketName, ok = options["bucket_name"].(string); !ok || cfg.BucketName == "" {
		return nil, storage.MissingOption("bucket_name")
	}
	cfg.Prefix, _ = options["prefix"].(string)

	return cfg, nil
}
