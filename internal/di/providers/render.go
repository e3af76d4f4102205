package providers

import (
	"github.com/samber/do/v2"

	"github.com/curecircle/curecircle-server/internal/config"
	"github.com/curecircle/curecircle-server/internal/export"
	"github.com/curecircle/curecircle-server/internal/liveness"
	"github.com/curecircle/curecircle-server/internal/logger"
	"github.com/curecircle/curecircle-server/internal/media/images"
	"github.com/curecircle/curecircle-server/internal/render"
)

// ProvideLivenessChecker provides the image liveness prober.
func ProvideLivenessChecker(i do.Injector) (*liveness.Checker, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return liveness.NewChecker(cfg.Liveness, log.Logger), nil
}

// ProvideRepairer provides the dead-image repairer that demotes broken
// card backgrounds to the default gradient.
func ProvideRepairer(i do.Injector) (*liveness.Repairer, error) {
	checker := do.MustInvoke[*liveness.Checker](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return liveness.NewRepairer(checker, storeHandle.Store, nil, log.Logger), nil
}

// ProvideCompositor provides the card rasterizer.
func ProvideCompositor(i do.Injector) (*render.Compositor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	fetcher := render.NewHTTPFetcher(cfg.Export.ImageTimeout)
	return render.NewCompositor(fetcher, cfg.Server.PublicURL, log.Logger), nil
}

// ProvideExportPipeline provides the card export pipeline.
func ProvideExportPipeline(i do.Injector) (*export.Pipeline, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	renderer := do.MustInvoke[*render.Compositor](i)
	storage := do.MustInvoke[*images.Storage](i)

	return export.New(renderer, storage, cfg.Server.PublicURL, cfg.Export.ImageTimeout, log.Logger), nil
}
