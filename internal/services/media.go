package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

const sniffLength = 3072

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaStore persists an object under key and returns its public URL.
type MediaStore interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
}

type UploadedMedia struct {
	URL  string
	Kind MediaKind
	MIME string
}

// MediaService classifies uploads by content, not by the client's
// Content-Type header, before handing them to the store.
type MediaService struct {
	store MediaStore
	now   func() time.Time
}

func NewMediaService(store MediaStore) *MediaService {
	return &MediaService{store: store, now: time.Now}
}

// Upload stores r under folder if its sniffed type is one of allowed.
func (s *MediaService) Upload(ctx context.Context, folder string, r io.Reader, allowed ...MediaKind) (*UploadedMedia, error) {
	header := make([]byte, sniffLength)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	header = header[:n]
	if n == 0 {
		return nil, ErrUnsupportedMedia
	}

	mtype := mimetype.Detect(header)
	kind := mediaKind(mtype.String())
	if kind == "" || !slices.Contains(allowed, kind) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}

	key := fmt.Sprintf("%s/%s/%s%s",
		strings.Trim(folder, "/"), s.now().UTC().Format("2006/01"), uuid.NewString(), mtype.Extension())

	url, err := s.store.Save(ctx, key, io.MultiReader(bytes.NewReader(header), r))
	if err != nil {
		return nil, fmt.Errorf("saving media: %w", err)
	}
	return &UploadedMedia{URL: url, Kind: kind, MIME: mtype.String()}, nil
}

func mediaKind(mime string) MediaKind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MediaImage
	case strings.HasPrefix(mime, "video/"):
		return MediaVideo
	}
	return ""
}
