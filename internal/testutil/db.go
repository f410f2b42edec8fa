package testutil

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"yatube/internal/database"
	"yatube/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain-text password of users created by CreateUser.
const Password = "s3cret-pass"

var dbSeq atomic.Uint64

// NewDB opens a private in-memory sqlite database with the full schema.
func NewDB(t TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection keeps the shared in-memory database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

var hashedPassword = sync.OnceValues(func() ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
})

// CreateUser inserts a user whose password is Password.
func CreateUser(t TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	hashed, err := hashedPassword()
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hashed)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateGroup inserts a group with the slug.
func CreateGroup(t TB, db *gorm.DB, slug string) *models.Group {
	t.Helper()
	group := &models.Group{Title: "Group " + slug, Slug: slug, Description: "About " + slug}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group %s: %v", slug, err)
	}
	return group
}

// CreatePost inserts a post by author at pubDate, optionally in group.
func CreatePost(t TB, db *gorm.DB, author *models.User, group *models.Group, text string, pubDate time.Time) *models.Post {
	t.Helper()
	// UTC keeps sqlite text timestamps comparable with rows the services write.
	post := &models.Post{Text: text, PubDate: pubDate.UTC(), AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	if err := db.Omit("Author", "Group").Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// CreateComment inserts a comment by author on post.
func CreateComment(t TB, db *gorm.DB, post *models.Post, author *models.User, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text, Created: time.Now().UTC()}
	if err := db.Omit("Post", "Author").Create(comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return comment
}

// Follow inserts a follow edge.
func Follow(t TB, db *gorm.DB, user, author *models.User) {
	t.Helper()
	if err := db.Omit("User", "Author").Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error; err != nil {
		t.Fatalf("follow: %v", err)
	}
}
