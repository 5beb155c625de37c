// Package di provides dependency injection configuration for the Shelfshare server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfshare/shelfshare-server/internal/auth"
	"github.com/shelfshare/shelfshare-server/internal/config"
	"github.com/shelfshare/shelfshare-server/internal/di/providers"
	"github.com/shelfshare/shelfshare-server/internal/logger"
	"github.com/shelfshare/shelfshare-server/internal/render"
	"github.com/shelfshare/shelfshare-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideTokenService)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Object storage
	do.Provide(injector, providers.ProvideObjectStore)

	// Catalog metadata
	do.Provide(injector, providers.ProvideAudibleClient)

	// Rendering
	do.Provide(injector, providers.ProvideRenderer)
	do.Provide(injector, providers.ProvideCoverFetcher)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideMetadataService)
	do.Provide(injector, providers.ProvideSyncService)
	do.Provide(injector, providers.ProvideListService)
	do.Provide(injector, providers.ProvideAdminService)

	// Workers
	do.Provide(injector, providers.ProvideTokenCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once everything is running.
// This triggers lazy initialization of every provider in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ObjectStoreHandle](injector)
	_ = do.MustInvoke[*providers.AudibleClientHandle](injector)
	_ = do.MustInvoke[*render.Renderer](injector)
	_ = do.MustInvoke[*render.CoverFetcher](injector)

	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.MetadataService](injector)
	_ = do.MustInvoke[*service.SyncService](injector)
	_ = do.MustInvoke[*service.ListService](injector)
	_ = do.MustInvoke[*service.AdminService](injector)

	_ = do.MustInvoke[*providers.TokenCleanupJob](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
