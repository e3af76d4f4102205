// Package di provides dependency injection configuration for the CureCircle server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/curecircle/curecircle-server/internal/auth"
	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/di/providers"
	"github.com/curecircle/curecircle-server/internal/export"
	"github.com/curecircle/curecircle-server/internal/liveness"
	"github.com/curecircle/curecircle-server/internal/logger"
	"github.com/curecircle/curecircle-server/internal/media/images"
	"github.com/curecircle/curecircle-server/internal/music"
	"github.com/curecircle/curecircle-server/internal/render"
	"github.com/curecircle/curecircle-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideImageStorage)

	// Rendering and export layer
	do.Provide(injector, providers.ProvideLivenessChecker)
	do.Provide(injector, providers.ProvideRepairer)
	do.Provide(injector, providers.ProvideCompositor)
	do.Provide(injector, providers.ProvideExportPipeline)

	// Remote music service
	do.Provide(injector, providers.ProvideMusicClient)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCardService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideGalleryService)
	do.Provide(injector, providers.ProvidePlaylistService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)
	do.Provide(injector, providers.ProvideExportJanitorJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*liveness.Checker](injector)
	_ = do.MustInvoke[*liveness.Repairer](injector)
	_ = do.MustInvoke[*render.Compositor](injector)
	_ = do.MustInvoke[*export.Pipeline](injector)
	_ = do.MustInvoke[*music.Client](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.CardService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.GalleryService](injector)
	_ = do.MustInvoke[*service.PlaylistService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)
	_ = do.MustInvoke[*providers.ExportJanitorJob](injector)

	// Server last, once everything it serves is up
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
