package catalog

import "time"

type Category struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Category) TableName() string { return "categories" }

// Mantra rows are soft-deleted: the deleted flag hides them from normal reads
// but the row stays in storage.
type Mantra struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Author     string    `gorm:"type:varchar(128)" json:"author,omitempty"`
	CategoryID *uint64   `gorm:"index" json:"category_id,omitempty"`
	Deleted    bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}

func (Mantra) TableName() string { return "mantras" }

type Like struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;index:uniq_like,unique,priority:1" json:"user_id"`
	MantraID  uint64    `gorm:"not null;index:uniq_like,unique,priority:2" json:"mantra_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string { return "likes" }

// MantraView is a mantra plus its like count.
type MantraView struct {
	Mantra
	LikeCount int64 `json:"like_count"`
	Liked     bool  `json:"liked"`
}
