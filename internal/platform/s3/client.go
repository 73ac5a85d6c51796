package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// MetadataFile is written by Flink when a savepoint completes.
const MetadataFile = "_metadata"

// headObjectAPI is the subset of the S3 API the store needs.
type headObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Client checks savepoint locations in S3-compatible storage.
type Client struct {
	s3 headObjectAPI
}

// NewClient creates a client for the given endpoint. Path-style addressing is
// used since self-hosted stores (MinIO, Ceph) rarely support virtual hosts.
func NewClient(ctx context.Context, endpoint, region, accessKey, secretKey string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &Client{s3: client}, nil
}

// Exists reports whether a completed savepoint is stored at location.
// Locations outside S3 (file://, hdfs://, ...) cannot be checked and are reported as present.
func (c *Client) Exists(ctx context.Context, location string) (bool, error) {
	bucket, prefix, ok, err := ParseLocation(location)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}

	key := MetadataFile
	if prefix != "" {
		key = prefix + "/" + MetadataFile
	}

	_, err = c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check savepoint %s: %w", location, err)
	}
	return true, nil
}

// ParseLocation splits an s3://, s3a:// or s3p:// URI into bucket and key prefix.
// ok is false for other schemes.
func ParseLocation(location string) (bucket, prefix string, ok bool, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", false, fmt.Errorf("invalid savepoint location %q: %w", location, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "s3", "s3a", "s3p":
	default:
		return "", "", false, nil
	}

	if u.Host == "" {
		return "", "", false, fmt.Errorf("invalid savepoint location %q: missing bucket", location)
	}
	return u.Host, strings.Trim(u.Path, "/"), true, nil
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	// S3-compatible services do not always return the SDK error types
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey" || code == "NoSuchBucket" || code == "404"
	}

	return false
}
