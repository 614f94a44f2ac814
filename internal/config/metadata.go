package config

import (
	"fmt"

	"github.com/spf13/cast"
)

// Values returns the raw metadata tree used as the template context.
func (m *Metadata) Values() map[string]any {
	return m.values
}

// URL returns config.url, the cluster base URL.
func (m *Metadata) URL() (string, error) {
	return m.lookupString("config", "url")
}

// Repository returns config.repository.
func (m *Metadata) Repository() (string, error) {
	return m.lookupString("config", "repository")
}

// BucketString returns a string setting from config.bucket, or "" when it is
// not present. Used for the optional bucket preflight.
func (m *Metadata) BucketString(key string) string {
	bucket, err := m.lookupMap("config", "bucket")
	if err != nil {
		return ""
	}
	return cast.ToString(bucket[key])
}

// InjectCredentials writes the storage credentials into config.bucket.
func (m *Metadata) InjectCredentials(creds Credentials) error {
	bucket, err := m.lookupMap("config", "bucket")
	if err != nil {
		return err
	}
	bucket["access_key"] = creds.AccessKey
	bucket["access_secret"] = creds.SecretKey
	return nil
}

// SetSnapshotName writes config.bucket.snapshot.name.
func (m *Metadata) SetSnapshotName(name string) error {
	snapshot, err := m.lookupMap("config", "bucket", "snapshot")
	if err != nil {
		return err
	}
	snapshot["name"] = name
	return nil
}

func (m *Metadata) lookupMap(keys ...string) (map[string]any, error) {
	node := m.values
	for i, key := range keys {
		child, ok := node[key]
		if !ok {
			return nil, fmt.Errorf("metadata key %q not found", joinPath(keys[:i+1]))
		}
		next, ok := child.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("metadata key %q is not a mapping", joinPath(keys[:i+1]))
		}
		node = next
	}
	return node, nil
}

func (m *Metadata) lookupString(keys ...string) (string, error) {
	parent, err := m.lookupMap(keys[:len(keys)-1]...)
	if err != nil {
		return "", err
	}
	leaf := keys[len(keys)-1]
	value, ok := parent[leaf]
	if !ok {
		return "", fmt.Errorf("metadata key %q not found", joinPath(keys))
	}
	return cast.ToString(value), nil
}

func joinPath(keys []string) string {
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += "."
		}
		out += k
	}
	return out
}
