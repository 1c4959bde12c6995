// Package archive reads file payloads from S3-compatible archive storage
// so they can be staged locally for metadata extraction.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/arcdex/arcdex/internal/metrics"
)

// Config holds connection parameters for archive storage.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Object describes one archived object.
type Object struct {
	Key  string
	Size int64
}

// Client lists and stages objects from one archive bucket.
type Client struct {
	mc     *minio.Client
	bucket string
}

// New creates an archive storage client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("archive endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create archive client: %w", err)
	}

	return &Client{mc: mc, bucket: cfg.Bucket}, nil
}

// Ping verifies the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("archive ping: %w", err)
	}
	if !exists {
		return fmt.Errorf("archive bucket %q does not exist", c.bucket)
	}
	return nil
}

// List returns the objects under a key prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	var objects []Object
	for info := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list archive objects %q: %w", prefix, info.Err)
		}
		if strings.HasSuffix(info.Key, "/") {
			continue
		}
		objects = append(objects, Object{Key: info.Key, Size: info.Size})
	}
	return objects, nil
}

// Stage downloads an object into destDir, preserving its relative layout
// so sibling header files stay next to their payloads. Returns the local path.
func (c *Client) Stage(ctx context.Context, key, destDir string) (string, error) {
	local := filepath.Join(destDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return "", fmt.Errorf("stage %q: %w", key, err)
	}

	if err := c.mc.FGetObject(ctx, c.bucket, key, local, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("stage %q: %w", key, err)
	}

	metrics.ArchiveObjectsStaged.Inc()
	return local, nil
}
