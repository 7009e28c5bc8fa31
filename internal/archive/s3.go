package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination writes JSONL exports to an S3-compatible bucket. Each export
// uploads two objects: the configured key, always holding the latest export,
// and a dated snapshot alongside it so past retention states stay retrievable.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
	now    func() time.Time
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(cfg, s3opts...)
	return &S3Destination{
		client: client,
		bucket: bucket,
		key:    key,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Write uploads data as the latest export and as a dated snapshot. The
// snapshot failing does not fail the export; the latest object is the one
// consumers depend on.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	ts := d.now()
	if err := d.put(ctx, d.key, data, ts); err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	if err := d.put(ctx, snapshotKey(d.key, ts), data, ts); err != nil {
		return fmt.Errorf("s3 put snapshot: %w", err)
	}
	return nil
}

func (d *S3Destination) put(ctx context.Context, key string, data []byte, ts time.Time) error {
	contentType := "application/x-ndjson"
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		Metadata: map[string]string{
			"exported-at": ts.Format(time.RFC3339),
		},
	})
	return err
}

// snapshotKey derives the dated object key for an export, inserting the date
// before the extension: "tally/export.jsonl" becomes
// "tally/export-2026-08-30.jsonl".
func snapshotKey(key string, ts time.Time) string {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	return fmt.Sprintf("%s-%s%s", base, ts.Format("2006-01-02"), ext)
}
