package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/verity/backend/internal/models"
)

// Upload size limits per media kind
const (
	MaxImageBytes = 5 * 1024 * 1024
	MaxVideoBytes = 50 * 1024 * 1024
)

var (
	ErrEmptyMedia       = errors.New("media file is empty")
	ErrUnsupportedMedia = errors.New("only image and video files are supported")
	ErrMediaTooLarge    = errors.New("media file is too large")
)

// MediaUpload is a buffered attachment ready for hosting
type MediaUpload struct {
	UserID      string
	Filename    string
	Data        []byte
	Kind        models.MediaType
	ContentType string
	Extension   string
}

// DetectMedia sniffs the buffer's content type, classifies it as image or video
// and enforces the per-kind size limit.
func DetectMedia(userID, filename string, data []byte) (*MediaUpload, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMedia
	}

	mtype := mimetype.Detect(data)
	contentType := mtype.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	var kind models.MediaType
	var limit int
	switch {
	case strings.HasPrefix(contentType, "video/"):
		kind, limit = models.MediaVideo, MaxVideoBytes
	case strings.HasPrefix(contentType, "image/"):
		kind, limit = models.MediaImage, MaxImageBytes
	default:
		return nil, ErrUnsupportedMedia
	}

	if len(data) > limit {
		return nil, fmt.Errorf("%w: %s limit is %d MB", ErrMediaTooLarge, kind, limit/(1024*1024))
	}

	return &MediaUpload{
		UserID:      userID,
		Filename:    filename,
		Data:        data,
		Kind:        kind,
		ContentType: contentType,
		Extension:   mtype.Extension(),
	}, nil
}
