package container

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verity/backend/internal/auth"
	"github.com/verity/backend/internal/database"
	"github.com/verity/backend/internal/email"
	"github.com/verity/backend/internal/feed"
	"github.com/verity/backend/internal/repository"
	"github.com/verity/backend/internal/social"
)

func TestValidateReportsMissingDependencies(t *testing.T) {
	err := New().Validate()
	require.Error(t, err)

	var initErr *InitializationError
	require.True(t, errors.As(err, &initErr))
	assert.ElementsMatch(t, []string{
		"database (DB)", "mailer", "auth service", "social service", "feed composer",
	}, initErr.MissingDeps)
	assert.Contains(t, err.Error(), "feed composer")
}

func TestValidateWithoutOptionalServices(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	store := repository.NewStore(db)

	c := New().
		WithDB(db).
		WithMailer(email.LogSender{}).
		WithAuthService(auth.NewService(store.Users, email.LogSender{}, []byte("secret"), 0)).
		WithSocialService(social.NewService(store, nil)).
		WithFeedComposer(feed.NewComposer(store.Posts))

	assert.NoError(t, c.Validate())
	assert.Nil(t, c.Cache())
	assert.Nil(t, c.MediaStore())
	assert.Same(t, db, c.DB())
}

func TestCleanupRunsInReverseOrder(t *testing.T) {
	var order []string
	hook := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}

	c := New().
		OnCleanup("database", hook("database", nil)).
		OnCleanup("redis", hook("redis", errors.New("connection reset"))).
		OnCleanup("http", hook("http", nil))

	err := c.Cleanup(context.Background())
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, []string{"http", "redis", "database"}, order)

	// Hooks run once
	order = nil
	assert.NoError(t, c.Cleanup(context.Background()))
	assert.Empty(t, order)
}
