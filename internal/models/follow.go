package models

// Follow is a directed edge: UserID receives AuthorID's posts in the
// personalized feed. The pair is unique and both ends are protected from
// deletion.
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_follows_user_author" json:"user_id"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	AuthorID uint `gorm:"not null;uniqueIndex:idx_follows_user_author;index;check:chk_follows_not_self,user_id <> author_id" json:"author_id"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
