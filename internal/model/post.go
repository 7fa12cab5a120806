package model

import "time"

// Post is a blog entry. Author is a plain reference to a User; the user row
// is not cascaded, so deleting a user (no such route exists) would orphan its
// posts.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Summary   string    `json:"summary" gorm:"size:1024"`
	Content   string    `json:"content" gorm:"type:text"`
	Cover     string    `json:"cover" gorm:"size:512"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Author    User      `json:"author" gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
