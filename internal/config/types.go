package config

import "time"

// GlobalConfig holds tool-level settings carried alongside the cluster
// metadata in the same YAML file.
type GlobalConfig struct {
	LogLevel         string        `mapstructure:"log_level"`
	LogFormat        string        `mapstructure:"log_format"` // json or console
	LockFile         string        `mapstructure:"lock_file"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`
	BucketTemplate   string        `mapstructure:"bucket_template"`
	SnapshotTemplate string        `mapstructure:"snapshot_template"`
	BucketPayload    string        `mapstructure:"bucket_payload"`
	SnapshotPayload  string        `mapstructure:"snapshot_payload"`
}

type NotificationsConfig struct {
	Webhooks []WebhookConfig `mapstructure:"webhooks"`
}

type WebhookConfig struct {
	Name    string            `mapstructure:"name"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// Credentials are the storage-provider secrets injected into the metadata
// tree before rendering. They are read once in the command layer and passed
// down explicitly.
type Credentials struct {
	AccessKey string
	SecretKey string
}
