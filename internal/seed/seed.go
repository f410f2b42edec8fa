package seed

import (
	"context"
	"fmt"
	"log/slog"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Users              int
	Groups             int
	Posts              int
	MaxCommentsPerPost int
	MaxFollowsPerUser  int
	// MaxDays bounds how far back pub_date values are spread.
	MaxDays int
	// Seed makes a run reproducible; zero picks a random seed.
	Seed       int64
	Clean      bool
	SkipBcrypt bool
	DryRun     bool
}

// DefaultOptions is a small but browsable data set.
func DefaultOptions() Options {
	return Options{
		Users:              20,
		Groups:             5,
		Posts:              120,
		MaxCommentsPerPost: 4,
		MaxFollowsPerUser:  5,
		MaxDays:            90,
	}
}

// Result counts the rows a run created.
type Result struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

// Run seeds db according to opts.
func Run(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	if opts.Users <= 0 {
		return nil, fmt.Errorf("seed: at least one user is required")
	}

	f, err := NewFactory(db.WithContext(ctx), opts)
	if err != nil {
		return nil, err
	}

	if opts.Clean && !opts.DryRun {
		if err := ClearAll(ctx, db); err != nil {
			return nil, err
		}
	}

	res := &Result{}

	users := make([]*models.User, 0, opts.Users)
	for i := 1; i <= opts.Users; i++ {
		u, err := f.CreateUser(i)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)

	groups := make([]*models.Group, 0, opts.Groups)
	for i := 1; i <= opts.Groups; i++ {
		g, err := f.CreateGroup(i)
		if err != nil {
			return nil, fmt.Errorf("create group: %w", err)
		}
		groups = append(groups, g)
	}
	res.Groups = len(groups)

	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		var group *models.Group
		// roughly a third of posts have no group
		if len(groups) > 0 && f.faker.Number(0, 2) > 0 {
			group = pick(f, groups)
		}
		posts = append(posts, f.BuildPost(pick(f, users), group))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	res.Posts = len(posts)

	var comments []*models.Comment
	if opts.MaxCommentsPerPost > 0 {
		for _, p := range posts {
			for i, n := 0, f.faker.Number(0, opts.MaxCommentsPerPost); i < n; i++ {
				comments = append(comments, f.BuildComment(p, pick(f, users)))
			}
		}
	}
	if err := f.CreateCommentsBatch(comments); err != nil {
		return nil, fmt.Errorf("create comments: %w", err)
	}
	res.Comments = len(comments)

	follows := buildFollows(f, users, opts.MaxFollowsPerUser)
	if err := f.CreateFollowsBatch(follows); err != nil {
		return nil, fmt.Errorf("create follows: %w", err)
	}
	res.Follows = len(follows)

	middleware.Logger.Info("seed complete",
		slog.Int("users", res.Users),
		slog.Int("groups", res.Groups),
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
		slog.Int("follows", res.Follows),
		slog.Bool("dry_run", opts.DryRun),
	)
	return res, nil
}

// buildFollows picks up to maxPerUser distinct authors for every user, never the user itself.
func buildFollows(f *Factory, users []*models.User, maxPerUser int) []*models.Follow {
	if maxPerUser <= 0 || len(users) < 2 {
		return nil
	}
	limit := min(maxPerUser, len(users)-1)

	var out []*models.Follow
	for _, u := range users {
		seen := map[uint]struct{}{u.ID: {}}
		for i, n := 0, f.faker.Number(0, limit); i < n; i++ {
			author := pick(f, users)
			if _, ok := seen[author.ID]; ok {
				continue
			}
			seen[author.ID] = struct{}{}
			out = append(out, &models.Follow{UserID: u.ID, AuthorID: author.ID})
		}
	}
	return out
}

// ClearAll deletes every row the seeder can create, children first.
func ClearAll(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.Info("database cleared")
	return nil
}
