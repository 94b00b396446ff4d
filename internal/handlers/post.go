package handlers

import (
	"errors"
	"net/http"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

type PostHandler struct {
	postService  services.PostServiceInterface
	mediaService services.MediaServiceInterface
}

func NewPostHandler(postService services.PostServiceInterface, mediaService services.MediaServiceInterface) *PostHandler {
	return &PostHandler{postService: postService, mediaService: mediaService}
}

type PostListResponse struct {
	Posts []*models.Post `json:"posts"`
}

type CommentListResponse struct {
	Comments []models.Comment `json:"comments"`
}

type PostContentRequest struct {
	Content string `json:"content"`
}

func writePostError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrNotPostAuthor):
		writeError(w, http.StatusForbidden, "You can only modify your own posts")
	case errors.Is(err, services.ErrPostEmpty):
		writeError(w, http.StatusBadRequest, "Post needs content or an image")
	case errors.Is(err, services.ErrCommentRequired):
		writeError(w, http.StatusBadRequest, "Comment text is required")
	default:
		writeServerError(w, r, "Post operation failed", err)
	}
}

// readPostForm returns the content and uploaded image URLs from either a
// multipart form ("content", repeated "images") or a JSON body.
func (h *PostHandler) readPostForm(w http.ResponseWriter, r *http.Request) (string, []string, bool) {
	if !isMultipart(r) {
		var req PostContentRequest
		if !decodeJSON(w, r, &req) {
			return "", nil, false
		}
		return req.Content, nil, true
	}

	if !parseMultipart(w, r) {
		return "", nil, false
	}
	content := ""
	if v := formValue(r, "content"); v != nil {
		content = *v
	}
	var urls []string
	for _, fh := range formFiles(r, "images") {
		uploaded, ok := uploadFile(w, r, h.mediaService, fh, "posts", services.MediaImage)
		if !ok {
			return "", nil, false
		}
		urls = append(urls, uploaded.URL)
	}
	return content, urls, true
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	posts, err := h.postService.List(r.Context(), user.ID)
	if err != nil {
		writePostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts})
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	content, urls, ok := h.readPostForm(w, r)
	if !ok {
		return
	}

	post, err := h.postService.Create(r.Context(), models.CreatePostParams{
		AuthorID:  user.ID,
		Content:   content,
		ImageURLs: urls,
	})
	if err != nil {
		writePostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	postID, ok := pathUUID(w, r, "id", "post ID")
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), user.ID, postID)
	if err != nil {
		writePostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	postID, ok := pathUUID(w, r, "id", "post ID")
	if !ok {
		return
	}
	content, urls, ok := h.readPostForm(w, r)
	if !ok {
		return
	}

	post, err := h.postService.Update(r.Context(), user.ID, postID, content, urls)
	if err != nil {
		writePostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	postID, ok := pathUUID(w, r, "id", "post ID")
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), user.ID, postID); err != nil {
		writePostError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	postID, ok := pathUUID(w, r, "id", "post ID")
	if !ok {
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), user.ID, postID)
	if err != nil {
		writePostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	if requireUser(w, r) == nil {
		return
	}
	postID, ok := pathUUID(w, r, "id", "post ID")
	if !ok {
		return
	}

	comments, err := h.postService.ListComments(r.Context(), postID)
	if err != nil {
		writePostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CommentListResponse{Comments: comments})
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	postID, ok := pathUUID(w, r, "id", "post ID")
	if !ok {
		return
	}
	var req PostContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.postService.AddComment(r.Context(), user.ID, postID, req.Content)
	if err != nil {
		writePostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	postID, ok := pathUUID(w, r, "id", "post ID")
	if !ok {
		return
	}

	result, err := h.postService.Share(r.Context(), user.ID, postID)
	if err != nil {
		writePostError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
