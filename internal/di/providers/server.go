package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/curecircle/curecircle-server/internal/api"
	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/export"
	"github.com/curecircle/curecircle-server/internal/logger"
	"github.com/curecircle/curecircle-server/internal/media/images"
	"github.com/curecircle/curecircle-server/internal/render"
	"github.com/curecircle/curecircle-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*images.Storage](i)
	renderer := do.MustInvoke[*render.Compositor](i)
	exports := do.MustInvoke[*export.Pipeline](i)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Card:     do.MustInvoke[*service.CardService](i),
		Profile:  do.MustInvoke[*service.ProfileService](i),
		Gallery:  do.MustInvoke[*service.GalleryService](i),
		Playlist: do.MustInvoke[*service.PlaylistService](i),
	}

	handler := api.NewServer(cfg, storeHandle.Store, services, storage, renderer, exports, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
