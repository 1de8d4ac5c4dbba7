package models

import "time"

// Like records that an anonymous visitor liked a post.
// VisitorID is a client-supplied token and can be spoofed; it only deduplicates.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VisitorID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_likes_visitor_post" json:"visitor_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_visitor_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeState is the answer to a toggle or status query.
type LikeState struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}
