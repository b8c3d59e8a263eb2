package models

import (
	"strings"

	"gorm.io/gorm"
)

// Tag labels posts. Titles are stored lowercase.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:20;not null;uniqueIndex" json:"title"`
}

// NormalizeTagTitle returns the canonical stored form of a tag title.
func NormalizeTagTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// BeforeSave lowercases the title on every insert and update.
func (t *Tag) BeforeSave(_ *gorm.DB) error {
	t.Title = NormalizeTagTitle(t.Title)
	return nil
}
