// Package feed builds a viewer's home feed.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/verity/backend/internal/dto"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/metrics"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/repository"
	"github.com/verity/backend/internal/telemetry"
	"github.com/verity/backend/internal/util"
	"go.uber.org/zap"
)

// Page is one page of the feed
type Page struct {
	Posts []*models.Post
	Meta  dto.PageMeta
}

// Composer reads the feed through the post visibility scope. The following set
// is a subquery of the same statement, so nothing is cached between requests.
type Composer struct {
	posts repository.PostRepository
}

// NewComposer creates a feed composer
func NewComposer(posts repository.PostRepository) *Composer {
	return &Composer{posts: posts}
}

// Feed returns the newest posts viewerID may see: public posts, followers-only
// posts from accounts the viewer follows and the viewer's own posts.
func (c *Composer) Feed(ctx context.Context, viewerID string, page, limit int) (_ *Page, err error) {
	start := time.Now()
	page, limit = util.NormalizePage(page, limit)

	ctx, span := telemetry.Events().TraceFeed(ctx, viewerID, page, limit)
	defer func() { telemetry.EndSpan(span, err) }()

	// One extra row tells us whether another page exists.
	posts, err := c.posts.Feed(ctx, viewerID, limit+1, util.Offset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	metrics.RecordFeedGeneration("home", time.Since(start), len(posts))
	logger.Log.Debug("Feed composed",
		logger.WithUserID(viewerID),
		zap.Int("page", page),
		zap.Int("count", len(posts)),
		zap.Bool("has_more", hasMore),
	)

	return &Page{
		Posts: posts,
		Meta:  dto.PageMeta{Page: page, Limit: limit, HasMore: hasMore},
	}, nil
}
