package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/logging"
)

const (
	uploadMaxRetries   = 3
	uploadRetryBackoff = time.Second
)

// S3Storage implements BlobStore backed by an S3-compatible service.
type S3Storage struct {
	uploader *manager.Uploader
	client   *s3.Client
	bucket   string
	baseURL  string
}

// NewS3Storage configures an uploader targeting the provided object store.
func NewS3Storage(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Storage{
		uploader: uploader,
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Save uploads the provided content to the configured bucket. Transient
// failures are retried up to the retry budget; the reader must be seekable
// for retries to rewind it.
func (s *S3Storage) Save(ctx context.Context, key string, r io.Reader) (SavedObject, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return SavedObject{}, fmt.Errorf("s3 storage: empty key")
	}

	var lastErr error
	for attempt := 0; attempt < uploadMaxRetries; attempt++ {
		if attempt > 0 {
			if seeker, ok := r.(io.Seeker); ok {
				if _, err := seeker.Seek(0, io.SeekStart); err != nil {
					return SavedObject{}, fmt.Errorf("rewind upload body: %w", err)
				}
			} else {
				break
			}

			select {
			case <-ctx.Done():
				return SavedObject{}, ctx.Err()
			case <-time.After(uploadRetryBackoff):
			}
		}

		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   manager.ReadSeekCloser(r),
			ACL:    s3types.ObjectCannedACLPublicRead,
		})
		if err == nil {
			return SavedObject{URL: s.publicURL(key), StorageID: key}, nil
		}

		lastErr = err
		logging.FromContext(ctx).Warn("blob upload attempt failed",
			"key", key, "attempt", attempt+1, "error", err)
	}

	return SavedObject{}, fmt.Errorf("%w: %s: %v", ErrUploadFailed, key, lastErr)
}

// Remove deletes a stored object by its storage identifier.
func (s *S3Storage) Remove(ctx context.Context, storageID string) error {
	if strings.TrimSpace(storageID) == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	if err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", storageID, err)
	}

	return nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.baseURL == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}

var _ BlobStore = (*S3Storage)(nil)
