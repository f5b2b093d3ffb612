package services

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/floodwatch/apiserver/internal/logging"
	"github.com/floodwatch/apiserver/internal/storage"
	"github.com/google/uuid"
)

const mediaKeyPrefix = "images/"

// MediaService uploads transient local files to the object store and
// returns their public URLs.
type MediaService struct {
	store         *storage.Storage
	publicBaseURL string
	log           logging.Logger
}

func NewMediaService(store *storage.Storage, publicBaseURL string, log logging.Logger) *MediaService {
	return &MediaService{
		store:         store,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// UploadImage uploads the file at localPath and returns its public URL.
// An empty path returns empty without error. The local file is removed
// whether or not the upload succeeds, so failed attempts cannot
// accumulate temp files.
func (s *MediaService) UploadImage(ctx context.Context, localPath string) (string, error) {
	if strings.TrimSpace(localPath) == "" {
		return "", nil
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn(ctx, "failed to remove temp upload", "path", localPath, "error", err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(localPath))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := mediaKeyPrefix + uuid.NewString() + ext
	if err := s.store.Put(ctx, key, f, info.Size(), contentType); err != nil {
		return "", err
	}

	return s.publicBaseURL + "/" + s.store.Bucket() + "/" + key, nil
}
