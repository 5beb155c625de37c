package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfshare/shelfshare-server/internal/logger"
	"github.com/shelfshare/shelfshare-server/internal/metadata/audible"
)

// AudibleClientHandle wraps the Audible catalog client with shutdown capability.
type AudibleClientHandle struct {
	*audible.Client
}

// Shutdown implements do.Shutdownable.
func (h *AudibleClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideAudibleClient provides the rate-limited Audible catalog client.
func ProvideAudibleClient(i do.Injector) (*AudibleClientHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return &AudibleClientHandle{Client: audible.New(log.Logger)}, nil
}
