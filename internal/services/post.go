package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrNotPostAuthor   = errors.New("not the author of this post")
	ErrPostEmpty       = errors.New("post needs content or at least one image")
	ErrCommentRequired = errors.New("comment text is required")
)

const postFeedLimit = 100

// postSelectSQL expects the viewer as $1 for liked_by_me.
const postSelectSQL = `
SELECT p.id, p.content, p.created_at, p.updated_at,
       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id),
       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
       (SELECT COUNT(*) FROM post_shares s WHERE s.post_id = p.id),
       EXISTS(SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = $1),
       u.id, u.username, u.first_name, u.last_name, u.profile_picture_url
FROM posts p
JOIN users u ON u.id = p.author_id`

type PostService struct {
	db DBConn
}

func NewPostService(db DBConn) *PostService {
	return &PostService{db: db}
}

func scanPost(row Row) (*models.Post, error) {
	post := &models.Post{Images: []models.PostImage{}}
	author, err := scanSummaryAfter(row,
		&post.ID, &post.Content, &post.CreatedAt, &post.UpdatedAt,
		&post.LikesCount, &post.CommentsCount, &post.SharesCount, &post.LikedByMe,
	)
	if err != nil {
		return nil, err
	}
	post.Author = author
	return post, nil
}

// List returns the newest posts with counts relative to viewerID.
func (s *PostService) List(ctx context.Context, viewerID uuid.UUID) ([]*models.Post, error) {
	rows, err := s.db.Query(ctx, postSelectSQL+` ORDER BY p.created_at DESC, p.id DESC LIMIT $2`, viewerID, postFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	if err := s.attachImages(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, viewerID, postID uuid.UUID) (*models.Post, error) {
	post, err := scanPost(s.db.QueryRow(ctx, postSelectSQL+` WHERE p.id = $2`, viewerID, postID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}

	if err := s.attachImages(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) attachImages(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Post, len(posts))
	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := s.db.Query(ctx,
		`SELECT post_id, id, image_url FROM post_images WHERE post_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return fmt.Errorf("loading post images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID uuid.UUID
		var img models.PostImage
		if err := rows.Scan(&postID, &img.ID, &img.ImageURL); err != nil {
			return fmt.Errorf("scanning post image: %w", err)
		}
		if p, ok := byID[postID]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return rows.Err()
}

func (s *PostService) Create(ctx context.Context, params models.CreatePostParams) (*models.Post, error) {
	params.Content = strings.TrimSpace(params.Content)
	if params.Content == "" && len(params.ImageURLs) == 0 {
		return nil, ErrPostEmpty
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var postID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO posts (author_id, content) VALUES ($1, $2) RETURNING id`,
		params.AuthorID, params.Content,
	).Scan(&postID)
	if err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	if err := insertPostImages(ctx, tx, postID, params.ImageURLs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing post: %w", err)
	}
	committed = true

	return s.Get(ctx, params.AuthorID, postID)
}

func insertPostImages(ctx context.Context, q Querier, postID uuid.UUID, urls []string) error {
	for _, url := range urls {
		if _, err := q.Exec(ctx, `INSERT INTO post_images (post_id, image_url) VALUES ($1, $2)`, postID, url); err != nil {
			return fmt.Errorf("adding post image: %w", err)
		}
	}
	return nil
}

// Update replaces the post text and appends any new images. Only the
// author may edit.
func (s *PostService) Update(ctx context.Context, actorID, postID uuid.UUID, content string, newImageURLs []string) (*models.Post, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := requirePostAuthor(ctx, tx, actorID, postID, true); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE posts SET content = $2, updated_at = NOW() WHERE id = $1`,
		postID, strings.TrimSpace(content),
	)
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	if err := insertPostImages(ctx, tx, postID, newImageURLs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing post update: %w", err)
	}
	committed = true

	return s.Get(ctx, actorID, postID)
}

func (s *PostService) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	if err := requirePostAuthor(ctx, s.db, actorID, postID, false); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

func requirePostAuthor(ctx context.Context, q Querier, actorID, postID uuid.UUID, lock bool) error {
	query := `SELECT author_id FROM posts WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var authorID uuid.UUID
	err := q.QueryRow(ctx, query, postID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("getting post author: %w", err)
	}
	if authorID != actorID {
		return ErrNotPostAuthor
	}
	return nil
}

func postExists(ctx context.Context, q Querier, postID uuid.UUID) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists); err != nil {
		return fmt.Errorf("checking post: %w", err)
	}
	if !exists {
		return ErrPostNotFound
	}
	return nil
}

// ToggleLike likes the post, or removes the like if userID already liked it.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*models.LikeResult, error) {
	if err := postExists(ctx, s.db, postID); err != nil {
		return nil, err
	}

	result := &models.LikeResult{}
	tag, err := s.db.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("removing like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		_, err = s.db.Exec(ctx,
			`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID, userID,
		)
		if err != nil {
			return nil, fmt.Errorf("adding like: %w", err)
		}
		result.Liked = true
	}

	err = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&result.LikesCount)
	if err != nil {
		return nil, fmt.Errorf("counting likes: %w", err)
	}
	return result, nil
}

// ListComments returns the post's comments oldest first.
func (s *PostService) ListComments(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	if err := postExists(ctx, s.db, postID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.post_id, c.content, c.created_at,
		        u.id, u.username, u.first_name, u.last_name, u.profile_picture_url
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = $1
		 ORDER BY c.created_at ASC, c.id ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comments: %w", err)
	}
	return comments, nil
}

func (s *PostService) AddComment(ctx context.Context, authorID, postID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentRequired
	}
	if err := postExists(ctx, s.db, postID); err != nil {
		return nil, err
	}

	c, err := scanComment(s.db.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO comments (post_id, author_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, author_id, content, created_at
		)
		SELECT i.id, i.post_id, i.content, i.created_at,
		       u.id, u.username, u.first_name, u.last_name, u.profile_picture_url
		FROM inserted i JOIN users u ON u.id = i.author_id`,
		postID, authorID, content,
	))
	if err != nil {
		return nil, fmt.Errorf("adding comment: %w", err)
	}
	return &c, nil
}

func scanComment(row Row) (models.Comment, error) {
	var c models.Comment
	author, err := scanSummaryAfter(row, &c.ID, &c.PostID, &c.Content, &c.CreatedAt)
	if err != nil {
		return models.Comment{}, err
	}
	c.Author = author
	return c, nil
}

// Share records a share. Every call counts. The outer count does not see
// the row inserted by the CTE, so it is added back.
func (s *PostService) Share(ctx context.Context, userID, postID uuid.UUID) (*models.ShareResult, error) {
	result := &models.ShareResult{Shared: true}
	err := s.db.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO post_shares (post_id, user_id)
			SELECT id, $2 FROM posts WHERE id = $1
			RETURNING post_id
		)
		SELECT (SELECT COUNT(*) FROM post_shares WHERE post_id = $1) + COUNT(*)
		FROM inserted
		HAVING COUNT(*) > 0`,
		postID, userID,
	).Scan(&result.SharesCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sharing post: %w", err)
	}
	return result, nil
}
