package providers

import (
	"fmt"
	"strings"

	"github.com/samber/do/v2"

	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/logger"
	"github.com/curecircle/curecircle-server/internal/media/images"
)

// ProvideImageStorage provides the blob storage for gallery uploads and
// export captures. Blobs are served back under PUBLIC_URL/media.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	mediaURL := strings.TrimRight(cfg.Server.PublicURL, "/") + "/media"
	storage, err := images.NewStorage(cfg.Data.BasePath, mediaURL)
	if err != nil {
		return nil, fmt.Errorf("image storage: %w", err)
	}

	log.Info("Image storage initialized", "base_path", cfg.Data.BasePath, "media_url", mediaURL)

	return storage, nil
}
