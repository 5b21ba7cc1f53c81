package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verity/backend/internal/models"
)

// Minimal valid file headers for content sniffing
var (
	pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	mp4Header = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0, 0, 0, 0, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}
)

// =============================================================================
// MEDIA DETECTION TESTS
// =============================================================================

func TestDetectMedia(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantKind models.MediaType
		wantErr  error
	}{
		{"png image", pngHeader, models.MediaImage, nil},
		{"mp4 video", mp4Header, models.MediaVideo, nil},
		{"plain text", []byte("just some words"), "", ErrUnsupportedMedia},
		{"empty", nil, "", ErrEmptyMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, err := DetectMedia("user123", "file", tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, upload.Kind)
			assert.Equal(t, "user123", upload.UserID)
			assert.NotEmpty(t, upload.Extension)
		})
	}
}

func TestDetectMediaSizeLimits(t *testing.T) {
	bigImage := append(append([]byte{}, pngHeader...), make([]byte, MaxImageBytes)...)
	_, err := DetectMedia("u", "big.png", bigImage)
	assert.ErrorIs(t, err, ErrMediaTooLarge)

	// The same size is fine for video
	bigVideo := append(append([]byte{}, mp4Header...), make([]byte, MaxImageBytes)...)
	upload, err := DetectMedia("u", "clip.mp4", bigVideo)
	require.NoError(t, err)
	assert.Equal(t, models.MediaVideo, upload.Kind)
}

// =============================================================================
// KEY GENERATION TESTS
// =============================================================================

func TestMediaKeyFormat(t *testing.T) {
	now := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	key := mediaKey(models.MediaImage, "user456", ".png", now)

	assert.True(t, strings.HasPrefix(key, "posts/image/2024/03/user456/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)
	assert.NotEqual(t, key, mediaKey(models.MediaImage, "user456", ".png", now), "keys must be unique")
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test.com/posts/a.png", publicURL("https://cdn.test.com/", "posts/a.png"))
	assert.Equal(t, "https://cdn.test.com/posts/a.png", publicURL("https://cdn.test.com", "posts/a.png"))
}
