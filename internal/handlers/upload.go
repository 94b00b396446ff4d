package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/services"
)

const (
	maxUploadBody   = 50 << 20
	maxUploadMemory = 32 << 20
)

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return false
	}
	return true
}

// uploadFile stores fh through media, writing the error response on failure.
func uploadFile(w http.ResponseWriter, r *http.Request, media services.MediaServiceInterface, fh *multipart.FileHeader, folder string, kinds ...services.MediaKind) (*services.UploadedMedia, bool) {
	f, err := fh.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read uploaded file")
		return nil, false
	}
	defer f.Close()

	uploaded, err := media.Upload(r.Context(), folder, f, kinds...)
	if errors.Is(err, services.ErrUnsupportedMedia) {
		writeError(w, http.StatusBadRequest, "Unsupported media type")
		return nil, false
	}
	if err != nil {
		writeServerError(w, r, "Error storing upload", err)
		return nil, false
	}
	return uploaded, true
}

// formFile returns the first file under field, or nil.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	if files := r.MultipartForm.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// formValue returns a pointer to the trimmed field, or nil when the field is absent.
func formValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}
