package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfshare/shelfshare-server/internal/logger"
	"github.com/shelfshare/shelfshare-server/internal/render"
)

// ProvideRenderer provides the share-image renderer.
func ProvideRenderer(i do.Injector) (*render.Renderer, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return render.NewRenderer(log.Logger), nil
}

// ProvideCoverFetcher provides the cover-art downloader used during rendering.
func ProvideCoverFetcher(i do.Injector) (*render.CoverFetcher, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return render.NewCoverFetcher(log.Logger), nil
}
