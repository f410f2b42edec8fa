// Package seed fills the database with fake users, groups, posts, comments
// and follows. It is meant for development and demos only.
package seed

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	now   time.Time
	// synthetic ID counter when running in DryRun mode
	nextID   uint
	password string
}

// NewFactory creates a Factory bound to db. A zero opts.Seed picks a random seed.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	f := &Factory{
		db:     db,
		opts:   opts,
		faker:  gofakeit.New(seed),
		now:    time.Now().UTC(),
		nextID: 1000,
	}

	// One hash serves every user; they all share DefaultPassword.
	if opts.SkipBcrypt {
		f.password = DefaultPassword
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		f.password = string(hashed)
	}
	return f, nil
}

func (f *Factory) syntheticID() uint {
	f.nextID++
	return f.nextID
}

// CreateUser constructs and persists a fake user. n keeps usernames unique
// within one run.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	base := strings.ToLower(asciiOnly(f.faker.Username()))
	if base == "" {
		base = "user"
	}
	user := &models.User{
		Username:  fmt.Sprintf("%s_%d", base, n),
		Email:     strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", asciiOnly(first), asciiOnly(last), n)),
		FirstName: first,
		LastName:  last,
		Password:  f.password,
	}
	if validation.ValidateUsername(user.Username) != nil {
		user.Username = fmt.Sprintf("user_%d", n)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		user.ID = f.syntheticID()
		middleware.Logger.Debug("[dry-run] CreateUser", slog.String("username", user.Username))
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateGroup constructs and persists a fake group.
func (f *Factory) CreateGroup(n int, overrides ...func(*models.Group)) (*models.Group, error) {
	group := &models.Group{
		Title:       fmt.Sprintf("Group %d", n),
		Slug:        fmt.Sprintf("group-%d", n),
		Description: f.faker.Sentence(12),
	}
	if word := strings.ToLower(asciiOnly(f.faker.Noun())); word != "" {
		slug := fmt.Sprintf("%s-%d", word, n)
		if validation.ValidateGroupSlug(slug) == nil {
			group.Title = strings.ToUpper(word[:1]) + word[1:] + " lovers"
			group.Slug = slug
		}
	}

	for _, override := range overrides {
		override(group)
	}

	if f.opts.DryRun {
		group.ID = f.syntheticID()
		middleware.Logger.Debug("[dry-run] CreateGroup", slog.String("slug", group.Slug))
		return group, nil
	}

	if err := f.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// BuildPost constructs a post by author with a pub_date spread over the last
// MaxDays days. It is not persisted, which makes it usable for batching.
func (f *Factory) BuildPost(author *models.User, group *models.Group, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Text:     f.faker.Paragraph(1, f.faker.Number(1, 4), 12, "\n"),
		PubDate:  f.pastTime(f.maxDays()),
		AuthorID: author.ID,
	}
	if group != nil {
		post.GroupID = &group.ID
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in a single statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.syntheticID()
		}
		middleware.Logger.Debug("[dry-run] CreatePostsBatch", slog.Int("posts", len(posts)))
		return nil
	}
	return f.db.Omit("Author", "Group").CreateInBatches(posts, 100).Error
}

// BuildComment constructs a comment on post, written some time after it.
func (f *Factory) BuildComment(post *models.Post, author *models.User) *models.Comment {
	created := post.PubDate.Add(time.Duration(f.faker.Number(1, 72*60)) * time.Minute)
	if created.After(f.now) {
		created = f.now
	}
	return &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     f.faker.Sentence(f.faker.Number(3, 15)),
		Created:  created,
	}
}

// CreateCommentsBatch persists comments in a single statement.
func (f *Factory) CreateCommentsBatch(comments []*models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, c := range comments {
			c.ID = f.syntheticID()
		}
		middleware.Logger.Debug("[dry-run] CreateCommentsBatch", slog.Int("comments", len(comments)))
		return nil
	}
	return f.db.Omit("Post", "Author").CreateInBatches(comments, 100).Error
}

// CreateFollowsBatch persists follow edges in a single statement.
func (f *Factory) CreateFollowsBatch(follows []*models.Follow) error {
	if len(follows) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, fl := range follows {
			fl.ID = f.syntheticID()
		}
		middleware.Logger.Debug("[dry-run] CreateFollowsBatch", slog.Int("follows", len(follows)))
		return nil
	}
	return f.db.Omit("User", "Author").CreateInBatches(follows, 100).Error
}

func (f *Factory) maxDays() int {
	if f.opts.MaxDays <= 0 {
		return 90
	}
	return f.opts.MaxDays
}

// pastTime returns a random instant within the last days days.
func (f *Factory) pastTime(days int) time.Time {
	back := time.Duration(f.faker.Number(0, days*24*60-1)) * time.Minute
	return f.now.Add(-back).Truncate(time.Second)
}

// pick returns a random element of items.
func pick[T any](f *Factory, items []T) T {
	return items[f.faker.Number(0, len(items)-1)]
}

func asciiOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
