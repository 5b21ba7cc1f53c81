package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/verity/backend/internal/logger"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the password of every seeded account
const SeedPassword = "password123"

const seedEmailDomain = "@example.com"

var usernameStrip = regexp.MustCompile(`[^a-z0-9._]`)

// Seeder handles database seeding operations
type Seeder struct {
	db           *gorm.DB
	passwordHash string
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	// Seed returns an error only for invalid sources
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data
func (s *Seeder) SeedDev(ctx context.Context) error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(ctx, 50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating follows...")
	if err := s.seedFollows(ctx, users, 8); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating posts...")
	posts, err := s.seedPosts(ctx, users, 300)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating likes...")
	if err := s.seedLikes(ctx, users, posts, 1500); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	log("Creating comments...")
	if err := s.seedComments(ctx, users, posts, 800); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	return s.reconcile(ctx)
}

// SeedTest creates a small fixed set of accounts with a handful of posts
func (s *Seeder) SeedTest(ctx context.Context) error {
	fixtures := []struct {
		username string
		fullName string
	}{
		{"alice", "Alice Smith"},
		{"bob", "Bob Johnson"},
		{"charlie", "Charlie Brown"},
		{"diana", "Diana Prince"},
		{"eve", "Eve Wilson"},
	}

	var users []models.User
	for _, fixture := range fixtures {
		var user models.User
		err := s.db.WithContext(ctx).Where("username = ?", fixture.username).First(&user).Error
		if err == nil {
			users = append(users, user)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up %s: %w", fixture.username, err)
		}

		user, err = s.newUser(fixture.username, fixture.username+seedEmailDomain, fixture.fullName)
		if err != nil {
			return err
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", fixture.username, err)
		}
		users = append(users, user)
	}

	// alice <-> bob, charlie -> alice
	edges := [][2]int{{0, 1}, {1, 0}, {2, 0}}
	for _, e := range edges {
		if err := s.createFollow(ctx, users[e[0]].ID, users[e[1]].ID); err != nil {
			return err
		}
	}

	posts, err := s.seedPosts(ctx, users, 10)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}
	if err := s.seedComments(ctx, users, posts, 10); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	return s.reconcile(ctx)
}

// Clean removes all seeded accounts and everything that hangs off them
func (s *Seeder) Clean(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	seedUsers := db.Model(&models.User{}).Select("id").Where("email LIKE ?", "%"+seedEmailDomain)
	seedPosts := db.Model(&models.Post{}).Select("id").Where("user_id IN (?)", seedUsers)

	// Delete in reverse order of dependencies
	steps := []struct {
		table string
		run   func() error
	}{
		{"comments", func() error {
			return db.Where("user_id IN (?) OR post_id IN (?)", seedUsers, seedPosts).Delete(&models.Comment{}).Error
		}},
		{"likes", func() error {
			return db.Where("user_id IN (?) OR post_id IN (?)", seedUsers, seedPosts).Delete(&models.Like{}).Error
		}},
		{"posts", func() error {
			return db.Where("user_id IN (?)", seedUsers).Delete(&models.Post{}).Error
		}},
		{"follows", func() error {
			return db.Where("follower_id IN (?) OR following_id IN (?)", seedUsers, seedUsers).Delete(&models.Follow{}).Error
		}},
		{"users", func() error {
			return db.Where("email LIKE ?", "%"+seedEmailDomain).Delete(&models.User{}).Error
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("failed to clean %s: %w", step.table, err)
		}
	}

	// Non-seed accounts may have followed or liked seed content
	return s.reconcile(ctx)
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]models.User, error) {
	var seeded int64
	s.db.WithContext(ctx).Model(&models.User{}).Where("email LIKE ?", "%"+seedEmailDomain).Count(&seeded)
	if seeded >= int64(count) {
		var users []models.User
		if err := s.db.WithContext(ctx).Where("email LIKE ?", "%"+seedEmailDomain).Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing seed users, skipping creation", zap.Int64("seed_users", seeded))
		return users, nil
	}

	users := make([]models.User, 0, count)
	for len(users) < count {
		username := seedUsername(gofakeit.Username())
		var taken int64
		s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&taken)
		if taken > 0 {
			continue
		}

		user, err := s.newUser(username, username+seedEmailDomain, gofakeit.Name())
		if err != nil {
			return nil, err
		}
		user.Bio = truncate(gofakeit.HipsterSentence(), models.MaxBioLength)
		user.CreatedAt = gofakeit.DateRange(time.Now().AddDate(0, -6, 0), time.Now().AddDate(0, 0, -30))

		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
	}

	logger.Log.Info("Created users", zap.Int("count", len(users)))
	return users, nil
}

// seedFollows gives every user up to perUser random follow edges
func (s *Seeder) seedFollows(ctx context.Context, users []models.User, perUser int) error {
	created := 0
	for _, follower := range users {
		for _, idx := range rand.Perm(len(users))[:min(perUser, len(users))] {
			target := users[idx]
			if target.ID == follower.ID {
				continue
			}
			if err := s.createFollow(ctx, follower.ID, target.ID); err != nil {
				return err
			}
			created++
		}
	}
	logger.Log.Info("Created follows", zap.Int("count", created))
	return nil
}

func (s *Seeder) createFollow(ctx context.Context, followerID, followingID string) error {
	err := s.db.WithContext(ctx).Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create follow: %w", err)
	}
	return nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	// Mostly public, like a real network
	visibilities := []models.Visibility{
		models.VisibilityPublic, models.VisibilityPublic, models.VisibilityPublic,
		models.VisibilityFollowers, models.VisibilityPrivate,
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		post := models.Post{
			UserID:     author.ID,
			Content:    truncate(gofakeit.HipsterSentence(), models.MaxPostContentLength),
			Visibility: visibilities[rand.Intn(len(visibilities))],
		}
		createdAt := gofakeit.DateRange(time.Now().AddDate(0, 0, -30), time.Now())
		post.CreatedAt = createdAt
		post.UpdatedAt = createdAt

		if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}

	logger.Log.Info("Created posts", zap.Int("count", len(posts)))
	return posts, nil
}

func (s *Seeder) seedLikes(ctx context.Context, users []models.User, posts []models.Post, count int) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	created := 0
	for i := 0; i < count; i++ {
		like := models.Like{
			UserID: users[rand.Intn(len(users))].ID,
			PostID: posts[rand.Intn(len(posts))].ID,
		}
		err := s.db.WithContext(ctx).Create(&like).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create like: %w", err)
		}
		created++
	}

	logger.Log.Info("Created likes", zap.Int("count", created))
	return nil
}

// seedComments mixes top-level comments with replies to earlier comments on the same post
func (s *Seeder) seedComments(ctx context.Context, users []models.User, posts []models.Post, count int) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	commentTemplates := []string{
		"Love this!",
		"Great point",
		"Couldn't agree more",
		"Where was this taken?",
		"This made my day",
		"Following for more",
	}

	byPost := make(map[string][]string)
	for i := 0; i < count; i++ {
		post := posts[rand.Intn(len(posts))]

		var content string
		if rand.Float32() < 0.5 {
			content = commentTemplates[rand.Intn(len(commentTemplates))]
		} else {
			content = truncate(gofakeit.HipsterSentence(), models.MaxCommentContentLength)
		}

		comment := models.Comment{
			PostID:  post.ID,
			UserID:  users[rand.Intn(len(users))].ID,
			Content: content,
		}
		if earlier := byPost[post.ID]; len(earlier) > 0 && rand.Float32() < 0.3 {
			parent := earlier[rand.Intn(len(earlier))]
			comment.ParentID = &parent
		}

		createdAt := gofakeit.DateRange(post.CreatedAt, time.Now())
		comment.CreatedAt = createdAt
		comment.UpdatedAt = createdAt

		if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		byPost[post.ID] = append(byPost[post.ID], comment.ID)
	}

	logger.Log.Info("Created comments", zap.Int("count", count))
	return nil
}

// reconcile rewrites every counter once instead of bumping them row by row
func (s *Seeder) reconcile(ctx context.Context) error {
	result, err := repository.RecomputeCounters(ctx, s.db)
	if err != nil {
		return fmt.Errorf("failed to reconcile counters: %w", err)
	}
	logger.Log.Info("Counters reconciled",
		zap.Int64("users", result.Users),
		zap.Int64("posts", result.Posts),
	)
	return nil
}

// newUser builds a verified account with the shared seed password
func (s *Seeder) newUser(username, email, fullName string) (models.User, error) {
	if s.passwordHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		s.passwordHash = string(hash)
	}

	genders := []string{models.GenderMale, models.GenderFemale, models.GenderOther}
	return models.User{
		FullName:     truncate(fullName, models.MaxFullNameLength),
		Username:     username,
		Email:        email,
		PasswordHash: s.passwordHash,
		DateOfBirth:  gofakeit.DateRange(time.Now().AddDate(-60, 0, 0), time.Now().AddDate(-18, 0, 0)),
		Gender:       genders[rand.Intn(len(genders))],
		AvatarURL:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
		IsVerified:   true,
	}, nil
}

// seedUsername squeezes a generated handle into the username format
func seedUsername(raw string) string {
	name := usernameStrip.ReplaceAllString(strings.ToLower(raw), "")
	if len(name) > 16 {
		name = name[:16]
	}
	return fmt.Sprintf("%s%03d", name, rand.Intn(1000))
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
