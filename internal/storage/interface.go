package storage

import (
	"context"
)

// MediaStore hosts post attachments. The returned key is the deletion handle.
type MediaStore interface {
	UploadMedia(ctx context.Context, upload *MediaUpload) (*UploadResult, error)
	DeleteMedia(ctx context.Context, key string) error
}

// Ensure S3Uploader implements MediaStore
var _ MediaStore = (*S3Uploader)(nil)
