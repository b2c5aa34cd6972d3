package models

import (
	"time"
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title"` // Optional
	Text        string    `gorm:"type:text;not null" json:"text"`
	UserID      uint      `gorm:"not null;index" json:"userId"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	SubredditID uint      `gorm:"not null;index" json:"subredditId"`
	Subreddit   Subreddit `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"subreddit"`
	ParentID    *uint     `gorm:"index" json:"parentId"` // Nullable for top-level posts
	// Deleting a post takes its whole reply subtree and votes with it.
	Children  []Post     `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"children"`
	Upvotes   []Upvote   `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"upvotes"`
	Downvotes []Downvote `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"downvotes"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
