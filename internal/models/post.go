package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID            uuid.UUID   `json:"id"`
	Author        UserSummary `json:"author"`
	Content       string      `json:"content"`
	Images        []PostImage `json:"images"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	SharesCount   int         `json:"shares_count"`
	LikedByMe     bool        `json:"liked_by_me"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type PostImage struct {
	ID       uuid.UUID `json:"id"`
	ImageURL string    `json:"image"`
}

type Comment struct {
	ID        uuid.UUID   `json:"id"`
	PostID    uuid.UUID   `json:"post_id"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

type CreatePostParams struct {
	AuthorID  uuid.UUID
	Content   string
	ImageURLs []string
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

type ShareResult struct {
	Shared      bool `json:"shared"`
	SharesCount int  `json:"shares_count"`
}
