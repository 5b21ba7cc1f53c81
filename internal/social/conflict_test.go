package social

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verity/backend/internal/database"
	apperrors "github.com/verity/backend/internal/errors"
	"github.com/verity/backend/internal/metrics"
	"github.com/verity/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const staleReadCallback = "test:stale_existence_read"

// staleExistenceReads makes every read of the given tables come back empty while
// inserts still hit the real unique indexes. That is the view a request has when
// an identical request commits between its existence check and its insert.
func (suite *SocialServiceTestSuite) staleExistenceReads(tables ...string) (restore func()) {
	hidden := make(map[string]bool, len(tables))
	for _, table := range tables {
		hidden[table] = true
	}

	err := suite.db.Callback().Query().Before("gorm:query").Register(staleReadCallback, func(db *gorm.DB) {
		if hidden[db.Statement.Table] {
			db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "1 = 0"}}})
		}
	})
	require.NoError(suite.T(), err)

	return func() {
		require.NoError(suite.T(), suite.db.Callback().Query().Remove(staleReadCallback))
	}
}

func conflictCount(kind string) float64 {
	return testutil.ToFloat64(metrics.Get().ToggleConflicts.WithLabelValues(kind))
}

func (suite *SocialServiceTestSuite) TestDuplicateEdgesMapToDuplicateKey() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	post := suite.publish(alice, models.VisibilityPublic)

	require.NoError(t, suite.store.Follows.CreateFollow(suite.ctx, alice.ID, bob.ID))
	err := suite.store.Follows.CreateFollow(suite.ctx, alice.ID, bob.ID)
	assert.True(t, database.IsDuplicateKey(err), "got %v", err)

	require.NoError(t, suite.store.Likes.CreateLike(suite.ctx, bob.ID, post.ID))
	err = suite.store.Likes.CreateLike(suite.ctx, bob.ID, post.ID)
	assert.True(t, database.IsDuplicateKey(err), "got %v", err)
}

func (suite *SocialServiceTestSuite) TestToggleFollowLosingRaceIsConflict() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")

	// The winning request already committed the edge
	require.NoError(t, suite.service.Follow(suite.ctx, alice.ID, "bob"))
	before := conflictCount("follow")

	restore := suite.staleExistenceReads("follows")
	following, err := suite.service.ToggleFollow(suite.ctx, alice.ID, "bob")
	restore()

	require.ErrorIs(t, err, ErrConcurrentChange)
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.False(t, following)
	assert.Equal(t, before+1, conflictCount("follow"))

	// Rolled back: the committed edge and its counters are untouched
	isFollowing, err := suite.service.IsFollowing(suite.ctx, alice.ID, "bob")
	require.NoError(t, err)
	assert.True(t, isFollowing)
	assert.Equal(t, 1, suite.reloadUser(alice.ID).FollowingCount)
	assert.Equal(t, 1, suite.reloadUser(bob.ID).FollowersCount)
	suite.assertCountersMatchRelations()
}

func (suite *SocialServiceTestSuite) TestFollowLosingRaceSucceeds() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")

	require.NoError(t, suite.service.Follow(suite.ctx, alice.ID, "bob"))
	before := conflictCount("follow")

	restore := suite.staleExistenceReads("follows")
	err := suite.service.Follow(suite.ctx, alice.ID, "bob")
	restore()

	require.NoError(t, err)
	assert.Equal(t, before+1, conflictCount("follow"))
	assert.Equal(t, 1, suite.reloadUser(alice.ID).FollowingCount)
	assert.Equal(t, 1, suite.reloadUser(bob.ID).FollowersCount)
	suite.assertCountersMatchRelations()
}

func (suite *SocialServiceTestSuite) TestToggleLikeLosingRaceIsConflict() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	post := suite.publish(alice, models.VisibilityPublic)

	require.NoError(t, suite.service.Like(suite.ctx, bob.ID, post.ID))
	before := conflictCount("like")

	restore := suite.staleExistenceReads("likes")
	liked, err := suite.service.ToggleLike(suite.ctx, bob.ID, post.ID)
	restore()

	require.ErrorIs(t, err, ErrConcurrentChange)
	assert.False(t, liked)
	assert.Equal(t, before+1, conflictCount("like"))

	isLiked, err := suite.service.IsLiked(suite.ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, isLiked)
	assert.Equal(t, 1, suite.reloadPost(post.ID).LikesCount)
	suite.assertCountersMatchRelations()
}

func (suite *SocialServiceTestSuite) TestLikeLosingRaceSucceeds() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	post := suite.publish(alice, models.VisibilityPublic)

	require.NoError(t, suite.service.Like(suite.ctx, bob.ID, post.ID))
	before := conflictCount("like")

	restore := suite.staleExistenceReads("likes")
	err := suite.service.Like(suite.ctx, bob.ID, post.ID)
	restore()

	require.NoError(t, err)
	assert.Equal(t, before+1, conflictCount("like"))
	assert.Equal(t, 1, suite.reloadPost(post.ID).LikesCount)
	suite.assertCountersMatchRelations()
}

// Concurrent toggles from the same user must never leave counters out of step
// with the relations they cache, whichever toggles win.
func (suite *SocialServiceTestSuite) TestConcurrentTogglesKeepCountersInStep() {
	t := suite.T()
	alice := suite.createUser("alice")
	bob := suite.createUser("bob")
	post := suite.publish(bob, models.VisibilityPublic)

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := suite.service.ToggleFollow(suite.ctx, alice.ID, "bob"); err != nil {
				assert.ErrorIs(t, err, ErrConcurrentChange)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := suite.service.ToggleLike(suite.ctx, alice.ID, post.ID); err != nil {
				assert.ErrorIs(t, err, ErrConcurrentChange)
			}
		}()
	}
	wg.Wait()

	suite.assertCountersMatchRelations()
}
