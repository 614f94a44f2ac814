package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const bucketTemplate = `{
  "type": "s3",
  "settings": {
    "bucket": "{{ .config.bucket.name }}",
    "region": "{{ .config.bucket.region }}",
    "access_key": "{{ .config.bucket.access_key }}"
  }
}
`

func sampleContext() map[string]any {
	return map[string]any{
		"config": map[string]any{
			"bucket": map[string]any{
				"name":       "my-backups",
				"region":     "us-east-1",
				"access_key": "AKIA",
			},
		},
	}
}

func TestPayloadRendersJSON(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "bucket.json.tmpl")
	outPath := filepath.Join(dir, "bucket.json")
	if err := os.WriteFile(tmplPath, []byte(bucketTemplate), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	written, err := Payload(tmplPath, sampleContext(), outPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written == 0 {
		t.Fatal("expected bytes written")
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if len(data) != written {
		t.Fatalf("byte count mismatch: wrote %d, file has %d", written, len(data))
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	settings := decoded["settings"].(map[string]any)
	if settings["bucket"] != "my-backups" {
		t.Fatalf("unexpected bucket: %v", settings["bucket"])
	}
}

func TestPayloadTruncatesExisting(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "short.tmpl")
	outPath := filepath.Join(dir, "out.json")
	if err := os.WriteFile(tmplPath, []byte(`{"a":1}`), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	stale := make([]byte, 4096)
	if err := os.WriteFile(outPath, stale, 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	written, err := Payload(tmplPath, map[string]any{}, outPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	if len(data) != written || written != len(`{"a":1}`) {
		t.Fatalf("stale content not truncated: %d bytes", len(data))
	}
}

func TestPayloadMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	written, err := Payload(filepath.Join(dir, "absent.tmpl"), map[string]any{}, filepath.Join(dir, "out.json"))
	if err == nil {
		t.Fatal("expected error for missing template")
	}
	if written != 0 {
		t.Fatalf("expected no bytes written, got %d", written)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out.json")); !os.IsNotExist(statErr) {
		t.Fatal("output file should not exist after failed render")
	}
}

func TestPayloadMissingValue(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "bad.tmpl")
	if err := os.WriteFile(tmplPath, []byte(`{{ .config.missing }}`), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if _, err := Payload(tmplPath, map[string]any{"config": map[string]any{}}, filepath.Join(dir, "out.json")); err == nil {
		t.Fatal("expected error for missing value")
	}
}
