// Package models contains data structures for the blog's domain models.
package models

import (
	"time"
)

// Post is a published blog article.
type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Slug        string    `gorm:"size:200;not null;index" json:"slug"`
	Image       string    `gorm:"size:255" json:"image"`
	PublishedAt time.Time `gorm:"not null;index" json:"published_at"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      User      `gorm:"foreignKey:AuthorID" json:"author"`
	Likes       []User    `gorm:"many2many:post_likes;constraint:OnDelete:CASCADE" json:"-"`
	Tags        []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Comments    []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostLike is a row of the post_likes join table.
type PostLike struct {
	PostID uint `gorm:"primaryKey"`
	UserID uint `gorm:"primaryKey"`
}

// TableName specifies the table name for GORM.
func (PostLike) TableName() string {
	return "post_likes"
}

// PostTag is a row of the post_tags join table.
type PostTag struct {
	PostID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey"`
}

// TableName specifies the table name for GORM.
func (PostTag) TableName() string {
	return "post_tags"
}
