package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

var (
	ErrStoryContentRequired = errors.New("content required for text story")
	ErrInvalidStoryMedia    = errors.New("invalid story media type")
)

// visibleStoriesSQL selects stories whose author is in the viewer's audience:
// the viewer, everyone they follow, everyone following them, and their
// connections. UNION collapses duplicates.
const visibleStoriesSQL = `
WITH audience AS (
	SELECT $1::uuid AS user_id
	UNION SELECT followee_id FROM follows WHERE follower_id = $1
	UNION SELECT follower_id FROM follows WHERE followee_id = $1
	UNION SELECT CASE WHEN user_a = $1 THEN user_b ELSE user_a END
	      FROM connections WHERE user_a = $1 OR user_b = $1
)
SELECT s.id, s.media_url, s.media_type, s.content, s.background_color, s.created_at,
       u.id, u.username, u.first_name, u.last_name, u.profile_picture_url
FROM stories s
JOIN audience a ON a.user_id = s.author_id
JOIN users u ON u.id = s.author_id
WHERE s.created_at >= $2
ORDER BY s.created_at DESC, s.id DESC`

type StoryService struct {
	db DBConn
}

func NewStoryService(db DBConn) *StoryService {
	return &StoryService{db: db}
}

// VisibleStories yields the stories viewerID may see at now, newest first.
// Each range over the sequence runs a fresh query. The first error ends it.
func (s *StoryService) VisibleStories(ctx context.Context, viewerID uuid.UUID, now time.Time) iter.Seq2[models.Story, error] {
	return func(yield func(models.Story, error) bool) {
		rows, err := s.db.Query(ctx, visibleStoriesSQL, viewerID, models.StoryCutoff(now))
		if err != nil {
			yield(models.Story{}, fmt.Errorf("querying visible stories: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			story, err := scanStory(rows)
			if err != nil {
				yield(models.Story{}, fmt.Errorf("scanning story: %w", err))
				return
			}
			// Guards against clock skew between the app and the database.
			if !story.ActiveAt(now) {
				continue
			}
			if !yield(story, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Story{}, fmt.Errorf("iterating stories: %w", err))
		}
	}
}

// ListVisible collects VisibleStories into a slice.
func (s *StoryService) ListVisible(ctx context.Context, viewerID uuid.UUID, now time.Time) ([]models.Story, error) {
	stories := []models.Story{}
	for story, err := range s.VisibleStories(ctx, viewerID, now) {
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, nil
}

func (s *StoryService) Create(ctx context.Context, params models.CreateStoryParams) (*models.Story, error) {
	params.Content = strings.TrimSpace(params.Content)
	if params.MediaType == "" {
		params.MediaType = models.StoryMediaText
	}
	switch params.MediaType {
	case models.StoryMediaText:
		if params.Content == "" {
			return nil, ErrStoryContentRequired
		}
		params.MediaURL = nil
	case models.StoryMediaImage, models.StoryMediaVideo:
		if params.MediaURL == nil {
			return nil, ErrInvalidStoryMedia
		}
	default:
		return nil, ErrInvalidStoryMedia
	}
	if strings.TrimSpace(params.BackgroundColor) == "" {
		params.BackgroundColor = models.DefaultStoryBackground
	}

	story, err := scanStory(s.db.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO stories (author_id, media_url, media_type, content, background_color)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, author_id, media_url, media_type, content, background_color, created_at
		)
		SELECT i.id, i.media_url, i.media_type, i.content, i.background_color, i.created_at,
		       u.id, u.username, u.first_name, u.last_name, u.profile_picture_url
		FROM inserted i JOIN users u ON u.id = i.author_id`,
		params.AuthorID, params.MediaURL, params.MediaType, params.Content, params.BackgroundColor,
	))
	if err != nil {
		return nil, fmt.Errorf("creating story: %w", err)
	}
	return &story, nil
}

func scanStory(row Row) (models.Story, error) {
	var story models.Story
	author, err := scanSummaryAfter(row,
		&story.ID, &story.MediaURL, &story.MediaType, &story.Content, &story.BackgroundColor, &story.CreatedAt,
	)
	if err != nil {
		return models.Story{}, err
	}
	story.Author = author
	return story, nil
}
