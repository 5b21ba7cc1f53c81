package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestValidateServices(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		checks   map[string]Check
		wantErr  string
	}{
		{
			name:     "nothing required",
			required: nil,
			checks:   map[string]Check{"redis": failing},
		},
		{
			name:     "required and healthy",
			required: []string{"redis", " S3 "},
			checks:   map[string]Check{"redis": ok, "s3": ok},
		},
		{
			name:     "required but not configured",
			required: []string{"s3"},
			checks:   map[string]Check{"redis": ok},
			wantErr:  `required service "s3" is not configured`,
		},
		{
			name:     "required and failing",
			required: []string{"redis"},
			checks:   map[string]Check{"redis": failing, "database": ok},
			wantErr:  "connection refused",
		},
		{
			name:     "optional failure is tolerated",
			required: []string{"database"},
			checks:   map[string]Check{"redis": failing, "database": ok},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sv := NewServiceValidator(tt.required)
			for name, check := range tt.checks {
				sv.Register(name, check)
			}

			err := sv.ValidateServices(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChecksReceiveDeadline(t *testing.T) {
	var hasDeadline bool
	sv := NewServiceValidator(nil).Register("redis", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	require.NoError(t, sv.ValidateServices(context.Background()))
	assert.True(t, hasDeadline)
}
