package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/models"
	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

type ProfileHandler struct {
	userService  services.UserServiceInterface
	mediaService services.MediaServiceInterface
}

func NewProfileHandler(userService services.UserServiceInterface, mediaService services.MediaServiceInterface) *ProfileHandler {
	return &ProfileHandler{userService: userService, mediaService: mediaService}
}

type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	IsPrivate *bool   `json:"is_private"`
}

type UserListResponse struct {
	Users []models.UserCard `json:"users"`
}

// Get renders the profile named by the path, or the caller's own.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	targetID, ok := targetOrSelf(w, r, user)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), user.ID, targetID)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeServerError(w, r, "Error loading profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var params models.UpdateProfileParams
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		params = models.UpdateProfileParams{
			Username:  formValue(r, "username"),
			FirstName: formValue(r, "first_name"),
			LastName:  formValue(r, "last_name"),
			Bio:       formValue(r, "bio"),
			Location:  formValue(r, "location"),
		}
		if v := formValue(r, "is_private"); v != nil {
			b, err := strconv.ParseBool(*v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "is_private must be a boolean")
				return
			}
			params.IsPrivate = &b
		}
		if fh := formFile(r, "profile_picture"); fh != nil {
			uploaded, ok := uploadFile(w, r, h.mediaService, fh, "profile_pictures", services.MediaImage)
			if !ok {
				return
			}
			params.ProfilePictureURL = &uploaded.URL
		}
		if fh := formFile(r, "cover_photo"); fh != nil {
			uploaded, ok := uploadFile(w, r, h.mediaService, fh, "cover_photos", services.MediaImage)
			if !ok {
				return
			}
			params.CoverPhotoURL = &uploaded.URL
		}
	} else {
		var req UpdateProfileRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		params = models.UpdateProfileParams{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Bio:       req.Bio,
			Location:  req.Location,
			IsPrivate: req.IsPrivate,
		}
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, params)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username already taken")
		return
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		writeServerError(w, r, "Error updating profile", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	users, err := h.userService.Search(r.Context(), user.ID, r.URL.Query().Get("q"))
	if err != nil {
		writeServerError(w, r, "Error searching users", err)
		return
	}
	writeJSON(w, http.StatusOK, UserListResponse{Users: users})
}
