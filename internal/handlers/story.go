package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

type StoryHandler struct {
	storyService services.StoryServiceInterface
	mediaService services.MediaServiceInterface
	now          func() time.Time
}

func NewStoryHandler(storyService services.StoryServiceInterface, mediaService services.MediaServiceInterface) *StoryHandler {
	return &StoryHandler{storyService: storyService, mediaService: mediaService, now: time.Now}
}

type StoryListResponse struct {
	Stories []models.Story `json:"stories"`
}

type CreateStoryRequest struct {
	Content         string `json:"content"`
	BackgroundColor string `json:"background_color"`
}

// List returns the stories visible to the caller, newest first.
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	stories, err := h.storyService.ListVisible(r.Context(), user.ID, h.now())
	if err != nil {
		writeServerError(w, r, "Error listing stories", err)
		return
	}
	writeJSON(w, http.StatusOK, StoryListResponse{Stories: stories})
}

// Create accepts either a multipart form with an optional media file or a
// JSON text story.
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	params := models.CreateStoryParams{AuthorID: user.ID, MediaType: models.StoryMediaText}
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		if v := formValue(r, "content"); v != nil {
			params.Content = *v
		}
		if v := formValue(r, "background_color"); v != nil {
			params.BackgroundColor = *v
		}
		if fh := formFile(r, "media"); fh != nil {
			uploaded, ok := uploadFile(w, r, h.mediaService, fh, "stories", services.MediaImage, services.MediaVideo)
			if !ok {
				return
			}
			params.MediaURL = &uploaded.URL
			params.MediaType = models.StoryMediaImage
			if uploaded.Kind == services.MediaVideo {
				params.MediaType = models.StoryMediaVideo
			}
		}
	} else {
		var req CreateStoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		params.Content = req.Content
		params.BackgroundColor = req.BackgroundColor
	}

	story, err := h.storyService.Create(r.Context(), params)
	switch {
	case errors.Is(err, services.ErrStoryContentRequired):
		writeError(w, http.StatusBadRequest, "Content is required for text stories")
		return
	case errors.Is(err, services.ErrInvalidStoryMedia):
		writeError(w, http.StatusBadRequest, "Invalid story media")
		return
	case err != nil:
		writeServerError(w, r, "Error creating story", err)
		return
	}
	writeJSON(w, http.StatusCreated, story)
}
