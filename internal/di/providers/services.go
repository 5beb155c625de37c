package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfshare/shelfshare-server/internal/auth"
	"github.com/shelfshare/shelfshare-server/internal/config"
	"github.com/shelfshare/shelfshare-server/internal/logger"
	"github.com/shelfshare/shelfshare-server/internal/render"
	"github.com/shelfshare/shelfshare-server/internal/service"
)

// ProvideAuthService provides the OAuth sign-in service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, cfg.OAuth, log.Logger), nil
}

// ProvideUserService provides the user profile service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideLibraryService provides the imported-library service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, log.Logger), nil
}

// ProvideMetadataService provides the catalog metadata service.
func ProvideMetadataService(i do.Injector) (*service.MetadataService, error) {
	clientHandle := do.MustInvoke[*AudibleClientHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMetadataService(clientHandle.Client, cfg.Audible, log.Logger), nil
}

// ProvideSyncService provides the extension sync service.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSyncService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideListService provides the curated-list service.
func ProvideListService(i do.Injector) (*service.ListService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	renderer := do.MustInvoke[*render.Renderer](i)
	objectStore := do.MustInvoke[*ObjectStoreHandle](i)
	clientHandle := do.MustInvoke[*AudibleClientHandle](i)
	fetcher := do.MustInvoke[*render.CoverFetcher](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewListService(
		storeHandle.Store,
		renderer,
		objectStore.ObjectStore,
		clientHandle.Client,
		fetcher,
		cfg.Audible,
		log.Logger,
	), nil
}

// ProvideAdminService provides the admin console service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	renderer := do.MustInvoke[*render.Renderer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, renderer, log.Logger), nil
}
