package service

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	domainerrors "github.com/curecircle/curecircle-server/internal/errors"
	"github.com/curecircle/curecircle-server/internal/id"
	"github.com/curecircle/curecircle-server/internal/media/images"
)

// GalleryImage describes one stored upload for the background picker.
type GalleryImage struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	BlurHash   string    `json:"blur_hash"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// GalleryService stores user image uploads for card and profile backgrounds.
// Each image gets a JSON sidecar carrying dimensions and the BlurHash
// placeholder, so listing never has to decode pixels.
type GalleryService struct {
	storage *images.Storage
	logger  *slog.Logger
}

// NewGalleryService creates a gallery service.
func NewGalleryService(storage *images.Storage, logger *slog.Logger) *GalleryService {
	return &GalleryService{storage: storage, logger: logger}
}

// Upload validates and stores an image for the user's gallery.
func (s *GalleryService) Upload(ctx context.Context, userID string, data []byte) (*GalleryImage, error) {
	processed, err := images.ProcessUpload(data)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	name := fmt.Sprintf("gallery/%s/%s.png", userID, id.MustGenerate("img"))
	url, err := s.storage.Save(name, bytes.NewReader(processed.PNG))
	if err != nil {
		return nil, err
	}

	img := &GalleryImage{
		Name:       name,
		URL:        url,
		Width:      processed.Width,
		Height:     processed.Height,
		BlurHash:   processed.BlurHash,
		UploadedAt: time.Now(),
	}
	if err := s.writeMeta(name, img); err != nil {
		s.logger.Warn("gallery sidecar write failed", "name", name, "error", err)
	}

	s.logger.Info("gallery image stored", "user_id", userID, "name", name)
	return img, nil
}

// List returns the user's gallery, newest first.
func (s *GalleryService) List(ctx context.Context, userID string) ([]GalleryImage, error) {
	names, err := s.storage.List("gallery/" + userID)
	if err != nil {
		return nil, err
	}

	imgs := make([]GalleryImage, 0, len(names))
	for _, name := range names {
		if strings.HasSuffix(name, metaSuffix) {
			continue
		}
		img := GalleryImage{Name: name, URL: s.storage.URL(name)}
		if meta, err := s.readMeta(name); err == nil {
			img = *meta
		}
		imgs = append(imgs, img)
	}

	sort.Slice(imgs, func(i, j int) bool {
		return imgs[i].UploadedAt.After(imgs[j].UploadedAt)
	})
	return imgs, nil
}

// Delete removes an image and its sidecar. Users can only delete their own
// uploads.
func (s *GalleryService) Delete(ctx context.Context, userID, name string) error {
	if !strings.HasPrefix(name, "gallery/"+userID+"/") {
		return domainerrors.ErrForbidden
	}
	if err := s.storage.Delete(name); err != nil {
		return err
	}
	return s.storage.Delete(name + metaSuffix)
}

const metaSuffix = ".meta.json"

func (s *GalleryService) writeMeta(name string, img *GalleryImage) error {
	data, err := json.Marshal(img)
	if err != nil {
		return err
	}
	_, err = s.storage.Save(name+metaSuffix, bytes.NewReader(data))
	return err
}

func (s *GalleryService) readMeta(name string) (*GalleryImage, error) {
	data, err := s.storage.Get(name + metaSuffix)
	if err != nil {
		return nil, err
	}
	var img GalleryImage
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, err
	}
	return &img, nil
}
