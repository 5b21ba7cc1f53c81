package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/telemetry"
)

// S3Uploader hosts post media in an S3 bucket
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// UploadResult contains the result of an S3 upload
type UploadResult struct {
	Key    string           `json:"key"`
	URL    string           `json:"url"`
	Kind   models.MediaType `json:"kind"`
	Bucket string           `json:"bucket"`
	Size   int64            `json:"size"`
}

// NewS3Uploader creates a new S3 uploader. baseURL is the public (CDN) prefix;
// when empty the bucket's virtual-hosted URL is used.
func NewS3Uploader(ctx context.Context, region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Uploader{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: baseURL,
	}, nil
}

// UploadMedia stores the attachment under posts/{kind}/{year}/{month}/{userID}/{id}{ext}
func (u *S3Uploader) UploadMedia(ctx context.Context, upload *MediaUpload) (_ *UploadResult, err error) {
	ctx, span := telemetry.Events().TraceExternalAPI(ctx, "s3", "put_object")
	defer func() { telemetry.EndSpan(span, err) }()

	now := time.Now().UTC()
	key := mediaKey(upload.Kind, upload.UserID, upload.Extension, now)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(upload.Data),
		ContentType:  aws.String(upload.ContentType),
		CacheControl: aws.String("max-age=31536000, immutable"),
		Metadata: map[string]string{
			"user-id":           upload.UserID,
			"original-filename": upload.Filename,
			"upload-timestamp":  now.Format(time.RFC3339),
			"media-kind":        string(upload.Kind),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:    key,
		URL:    publicURL(u.baseURL, key),
		Kind:   upload.Kind,
		Bucket: u.bucket,
		Size:   int64(len(upload.Data)),
	}, nil
}

// DeleteMedia deletes an object by its key
func (u *S3Uploader) DeleteMedia(ctx context.Context, key string) (err error) {
	ctx, span := telemetry.Events().TraceExternalAPI(ctx, "s3", "delete_object")
	defer func() { telemetry.EndSpan(span, err) }()

	_, err = u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}

func mediaKey(kind models.MediaType, userID, extension string, now time.Time) string {
	return fmt.Sprintf("posts/%s/%d/%02d/%s/%s%s",
		kind, now.Year(), now.Month(), userID, uuid.New().String(), extension)
}

func publicURL(baseURL, key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(baseURL, "/"), key)
}
