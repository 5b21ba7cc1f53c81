package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults", 0, 0, 1, DefaultPageLimit},
		{"negative", -3, -1, 1, DefaultPageLimit},
		{"in range", 4, 15, 4, 15},
		{"limit capped", 2, 500, 2, MaxPageLimit},
		{"huge page capped", math.MaxInt, 20, MaxPage, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := NormalizePage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestOffsetNeverNegative(t *testing.T) {
	for _, raw := range []string{"1", "2", "99999999999", "9223372036854775807"} {
		page, limit := NormalizePage(ParseInt(raw, 1), MaxPageLimit)
		offset := Offset(page, limit)
		assert.GreaterOrEqual(t, offset, 0, "page %s", raw)
		assert.LessOrEqual(t, offset, math.MaxInt32, "page %s", raw)
	}
	assert.Equal(t, 20, Offset(2, 20))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 7, ParseInt("7", 1))
	assert.Equal(t, 1, ParseInt("seven", 1))
	assert.Equal(t, 1, ParseInt("", 1))
}
