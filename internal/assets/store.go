package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ObjectStore lists and downloads remote objects holding song audio.
type ObjectStore interface {
	// List returns the keys of every object under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Fetch downloads one object to destPath.
	Fetch(ctx context.Context, key, destPath string) error
}

// S3API abstracts the S3 operations used by S3Store. The s3.Client type
// satisfies this interface.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store is an ObjectStore over any S3-compatible bucket (Backblaze B2,
// MinIO, R2). The client must arrive pre-configured with endpoint and
// credentials.
type S3Store struct {
	client S3API
	bucket string
}

func NewS3Store(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range out.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

func (s *S3Store) Fetch(ctx context.Context, key, destPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return fmt.Errorf("fetch %s: %w", key, os.ErrNotExist)
		}
		return fmt.Errorf("fetch %s: %w", key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", key, err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		os.Remove(destPath)
		return fmt.Errorf("fetch %s: %w", key, err)
	}
	return f.Close()
}

// isS3NotFound reports whether err indicates the object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// Environment contract for the remote input bucket. Any variable missing
// means remote sync is disabled.
const (
	envBucket    = "B2_BUCKET"
	envEndpoint  = "B2_S3_ENDPOINT"
	envAccessKey = "AWS_ACCESS_KEY_ID"
	envSecretKey = "AWS_SECRET_ACCESS_KEY"
	envRegion    = "AWS_REGION"

	// S3-compatible endpoints encode their region in the hostname, but the
	// SDK still requires one.
	fallbackRegion = "us-east-1"
)

// S3FromEnv builds an S3Store from the bucket environment. ok is false when
// any required variable is absent, in which case callers should treat
// remote sync as disabled.
func S3FromEnv() (*S3Store, bool) {
	bucket := strings.TrimSpace(os.Getenv(envBucket))
	endpoint := strings.TrimSpace(os.Getenv(envEndpoint))
	keyID := strings.TrimSpace(os.Getenv(envAccessKey))
	secret := strings.TrimSpace(os.Getenv(envSecretKey))
	if bucket == "" || endpoint == "" || keyID == "" || secret == "" {
		return nil, false
	}

	region := strings.TrimSpace(os.Getenv(envRegion))
	if region == "" {
		region = fallbackRegion
	}

	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Region:       region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: keyID, SecretAccessKey: secret}, nil
			})),
	})
	return NewS3Store(client, bucket), true
}

// Compile-time interface check.
var _ ObjectStore = (*S3Store)(nil)
