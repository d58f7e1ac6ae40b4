// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a blog post in the Inkpress platform.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null;size:100" json:"title"`
	Content     string `gorm:"type:text;not null" json:"content"`
	IsPublished bool   `gorm:"not null;default:false" json:"isPublished"`
	// ImageURL is a relative path under /images, e.g. "/images/<uuid>.png".
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Comments  []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}
