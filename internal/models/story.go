package models

import (
	"time"

	"github.com/google/uuid"
)

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

const DefaultStoryBackground = "#4f46e5"

type StoryMediaType string

const (
	StoryMediaText  StoryMediaType = "text"
	StoryMediaImage StoryMediaType = "image"
	StoryMediaVideo StoryMediaType = "video"
)

type Story struct {
	ID              uuid.UUID      `json:"id"`
	Author          UserSummary    `json:"author"`
	MediaURL        *string        `json:"media"`
	MediaType       StoryMediaType `json:"media_type"`
	Content         string         `json:"content"`
	BackgroundColor string         `json:"background_color"`
	CreatedAt       time.Time      `json:"created_at"`
}

// StoryCutoff is the oldest creation time still visible at now.
func StoryCutoff(now time.Time) time.Time {
	return now.Add(-StoryTTL)
}

// ActiveAt reports whether the story is visible at now. A story created
// exactly StoryTTL ago is still active.
func (s Story) ActiveAt(now time.Time) bool {
	return !s.CreatedAt.Before(StoryCutoff(now))
}

type CreateStoryParams struct {
	AuthorID        uuid.UUID
	MediaURL        *string
	MediaType       StoryMediaType
	Content         string
	BackgroundColor string
}
