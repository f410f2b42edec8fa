package models

import (
	"strings"
	"time"
)

// Post is a blog entry. Listings are ordered newest-first by PubDate.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"column:pub_date;not null;index:idx_posts_pub_date,sort:desc" json:"pub_date"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"group_id,omitempty"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	// Image is the blob path of the JPEG master, relative to the media root.
	Image *string `gorm:"size:255" json:"image,omitempty"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
}

// HasImage reports whether an attachment is set.
func (p Post) HasImage() bool {
	return p.Image != nil && *p.Image != ""
}

// ImagePath returns the attachment path or "".
func (p Post) ImagePath() string {
	if !p.HasImage() {
		return ""
	}
	return *p.Image
}

// ImageWebPPath returns the path of the WebP variant stored next to the master.
func (p Post) ImageWebPPath() string {
	path := p.ImagePath()
	if path == "" {
		return ""
	}
	return strings.TrimSuffix(path, ".jpg") + ".webp"
}
