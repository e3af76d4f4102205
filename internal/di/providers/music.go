package providers

import (
	"github.com/samber/do/v2"

	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/logger"
	"github.com/curecircle/curecircle-server/internal/music"
)

// ProvideMusicClient provides the remote streaming service client.
// Without credentials the client starts disabled and music endpoints
// report an upstream failure instead of the server refusing to boot.
func ProvideMusicClient(i do.Injector) (*music.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := music.NewClient(cfg.Music, log.Logger)
	if client.Enabled() {
		log.Info("Music client configured", "base_url", cfg.Music.BaseURL)
	} else {
		log.Info("Music client disabled, no credentials configured")
	}

	return client, nil
}
