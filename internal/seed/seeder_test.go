package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verity/backend/internal/database"
	"github.com/verity/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeedTestCreatesFixtures(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	ctx := context.Background()

	seeder := NewSeeder(db)
	require.NoError(t, seeder.SeedTest(ctx))

	assert.Equal(t, int64(5), count(t, db, &models.User{}))
	assert.Equal(t, int64(3), count(t, db, &models.Follow{}))
	assert.Equal(t, int64(10), count(t, db, &models.Post{}))

	var alice models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	assert.True(t, alice.IsVerified)
	assert.Equal(t, 2, alice.FollowersCount)
	assert.Equal(t, 1, alice.FollowingCount)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte(SeedPassword)))

	// Running again reuses the accounts and edges
	require.NoError(t, seeder.SeedTest(ctx))
	assert.Equal(t, int64(5), count(t, db, &models.User{}))
	assert.Equal(t, int64(3), count(t, db, &models.Follow{}))
}

func TestSeedCountersMatchRelations(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, NewSeeder(db).SeedTest(ctx))

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		var comments int64
		require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
		assert.Equal(t, int(comments), p.CommentsCount, "post %s", p.ID)
	}

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		var authored int64
		require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", u.ID).Count(&authored).Error)
		assert.Equal(t, int(authored), u.PostsCount, "user %s", u.Username)
	}
}

func TestCleanKeepsRealAccounts(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	ctx := context.Background()

	person := models.User{
		FullName:     "Real Person",
		Username:     "realperson",
		Email:        "person@verity.dev",
		PasswordHash: "x",
		IsVerified:   true,
	}
	require.NoError(t, db.Create(&person).Error)

	seeder := NewSeeder(db)
	require.NoError(t, seeder.SeedTest(ctx))

	var alice models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	require.NoError(t, db.Create(&models.Follow{FollowerID: person.ID, FollowingID: alice.ID}).Error)
	require.NoError(t, seeder.reconcile(ctx))
	require.NoError(t, db.First(&person, "id = ?", person.ID).Error)
	require.Equal(t, 1, person.FollowingCount)

	require.NoError(t, seeder.Clean(ctx))

	assert.Equal(t, int64(1), count(t, db, &models.User{}))
	assert.Zero(t, count(t, db, &models.Follow{}))
	assert.Zero(t, count(t, db, &models.Post{}))
	assert.Zero(t, count(t, db, &models.Comment{}))

	require.NoError(t, db.First(&person, "id = ?", person.ID).Error)
	assert.Zero(t, person.FollowingCount)
}

func TestSeedUsernameFormat(t *testing.T) {
	for _, raw := range []string{"Jane.Doe", "x", "Some-Very-Long_Handle With Spaces!!"} {
		name := seedUsername(raw)
		assert.Regexp(t, `^[a-z0-9._]{3,20}$`, name, raw)
	}
}
