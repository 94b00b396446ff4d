// Package storage provides the media backends used for profile pictures,
// post images, story media and chat attachments.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Piyash1/HoriZoniX-SocialMediaApp-Backend/internal/config"
)

type Storage interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
}

// New returns the backend selected by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(ctx, cfg)
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
