package models

import (
	"time"
)

// Upvote and Downvote are separate tables, each keyed by the composite
// primary key (user_id, post_id). The key gives the at-most-one-row-per-pair
// guarantee; the vote handlers keep the two tables mutually exclusive.

type Upvote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Downvote struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}
