// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cenkalti/backoff/v4"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client used for mirrors.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client creates an S3 client from the default credential chain. A
// non-empty endpoint selects an S3-compatible server with path-style
// addressing.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// parseS3URL splits s3://bucket/key.
func parseS3URL(src string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(src, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q", src)
	}
	return bucket, key, nil
}

func (d *DownloadResolver) fetchS3(ctx context.Context, src string) (io.ReadCloser, int64, error) {
	bucket, key, err := parseS3URL(src)
	if err != nil {
		return nil, 0, backoff.Permanent(err)
	}
	if d.s3 == nil {
		client, err := NewS3Client(ctx, d.s3Region, d.s3Endpoint)
		if err != nil {
			return nil, 0, backoff.Permanent(err)
		}
		d.s3 = client
	}

	out, err := d.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, 0, backoff.Permanent(fmt.Errorf("get object %s: %w", key, err))
		}
		return nil, 0, fmt.Errorf("get object %s: %w", key, err)
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}
