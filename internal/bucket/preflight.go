package bucket

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kumar-pratik/create-es-snapshot/internal/config"
)

// Preflight checks that the snapshot bucket exists before the repository is
// registered with the cluster. Enabled only when config.bucket.endpoint is
// set; the cluster performs its own verification either way.
type Preflight struct {
	Endpoint string
	Region   string
	Bucket   string
	UseSSL   bool
}

// FromMetadata builds a preflight check from config.bucket settings. Returns
// nil when no endpoint is configured.
func FromMetadata(meta *config.Metadata) *Preflight {
	endpoint := meta.BucketString("endpoint")
	if endpoint == "" {
		return nil
	}
	return &Preflight{
		Endpoint: endpoint,
		Region:   meta.BucketString("region"),
		Bucket:   meta.BucketString("name"),
		UseSSL:   meta.BucketString("use_ssl") != "false",
	}
}

// Check reports an error when the bucket is absent or unreachable.
func (p *Preflight) Check(ctx context.Context, creds config.Credentials) error {
	client, err := minio.New(p.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure: p.UseSSL,
		Region: p.Region,
	})
	if err != nil {
		return fmt.Errorf("build bucket client: %w", err)
	}
	exists, err := client.BucketExists(ctx, p.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", p.Bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist at %s", p.Bucket, p.Endpoint)
	}
	return nil
}
