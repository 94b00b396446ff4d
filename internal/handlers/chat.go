package handlers

import (
	"errors"
	"net/http"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

type ChatHandler struct {
	messageService services.MessageServiceInterface
	mediaService   services.MediaServiceInterface
}

func NewChatHandler(messageService services.MessageServiceInterface, mediaService services.MediaServiceInterface) *ChatHandler {
	return &ChatHandler{messageService: messageService, mediaService: mediaService}
}

type MessageListResponse struct {
	Messages []models.Message `json:"messages"`
}

type ThreadListResponse struct {
	Threads []models.ChatThread `json:"threads"`
}

func writeChatError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Message must have text or an image")
	case errors.Is(err, services.ErrMessageToSelf):
		writeError(w, http.StatusBadRequest, "You cannot message yourself")
	default:
		writeServerError(w, r, "Chat operation failed", err)
	}
}

func (h *ChatHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	otherID, ok := pathUUID(w, r, "user_id", "user ID")
	if !ok {
		return
	}

	messages, err := h.messageService.ListConversation(r.Context(), user.ID, otherID)
	if err != nil {
		writeChatError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageListResponse{Messages: messages})
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	otherID, ok := pathUUID(w, r, "user_id", "user ID")
	if !ok {
		return
	}

	params := models.SendMessageParams{SenderID: user.ID, RecipientID: otherID}
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		if v := formValue(r, "content"); v != nil {
			params.Content = *v
		}
		if fh := formFile(r, "image"); fh != nil {
			uploaded, ok := uploadFile(w, r, h.mediaService, fh, "chat", services.MediaImage)
			if !ok {
				return
			}
			params.ImageURL = &uploaded.URL
		}
	} else {
		var req PostContentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		params.Content = req.Content
	}

	msg, err := h.messageService.Send(r.Context(), params)
	if err != nil {
		writeChatError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) Recent(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	threads, err := h.messageService.RecentThreads(r.Context(), user.ID)
	if err != nil {
		writeChatError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ThreadListResponse{Threads: threads})
}
