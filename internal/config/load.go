package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/kumar-pratik/create-es-snapshot/internal/cryptoutil"
)

// Metadata is the parsed snapshot metadata file: the raw tree used as the
// template context (mutated in place by credential injection) plus the typed
// ancillary sections.
type Metadata struct {
	values map[string]any

	Global        GlobalConfig
	Notifications NotificationsConfig
}

type fileSections struct {
	Global        GlobalConfig        `mapstructure:"global"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

// Load reads the metadata YAML (optionally encrypted) from path.
//
// A missing file or an empty path is not an error: it is logged and a nil
// Metadata is returned, which the orchestrator turns into the fatal
// "no configuration" path before rendering. Malformed YAML propagates.
func Load(path string, log zerolog.Logger) (*Metadata, error) {
	if path == "" {
		log.Warn().Msg("no metadata file provided")
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("metadata file not found")
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	if isEncryptedPath(path) {
		key := os.Getenv("ESSNAP_CONFIG_KEY")
		if key == "" {
			return nil, errors.New("metadata file is encrypted but ESSNAP_CONFIG_KEY is not set")
		}
		data, err = decryptMetadata(data, key)
		if err != nil {
			return nil, fmt.Errorf("decrypt metadata: %w", err)
		}
	}

	vp := viper.New()
	vp.SetConfigType("yaml")
	setDefaults(vp)
	if err := vp.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	var sections fileSections
	if err := vp.Unmarshal(&sections); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	expandEnv(&sections.Notifications)

	meta := &Metadata{
		values:        vp.AllSettings(),
		Global:        sections.Global,
		Notifications: sections.Notifications,
	}
	applyPostLoadDefaults(&meta.Global)
	return meta, nil
}

func isEncryptedPath(path string) bool {
	return strings.HasSuffix(path, ".enc") || strings.HasSuffix(path, ".encrypted")
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault("global.log_level", "info")
	vp.SetDefault("global.log_format", "json")
	vp.SetDefault("global.bucket_template", "configuration/elastic_bucket.json.tmpl")
	vp.SetDefault("global.snapshot_template", "configuration/elastic_snapshot.json.tmpl")
	vp.SetDefault("global.bucket_payload", "configuration/bucket.json")
	vp.SetDefault("global.snapshot_payload", "configuration/snapshot.json")
}

func applyPostLoadDefaults(g *GlobalConfig) {
	if g.OperationTimeout == 0 {
		g.OperationTimeout = 60 * time.Second
	}
	if g.HTTPTimeout == 0 {
		g.HTTPTimeout = 15 * time.Second
	}
}

func expandEnv(cfg *NotificationsConfig) {
	for i := range cfg.Webhooks {
		cfg.Webhooks[i].URL = os.ExpandEnv(cfg.Webhooks[i].URL)
	}
}

func decryptMetadata(ciphertext []byte, key string) ([]byte, error) {
	parsed, err := cryptoutil.ParseKey(key)
	if err != nil {
		return nil, err
	}
	return cryptoutil.DecryptMetadata(ciphertext, parsed)
}
