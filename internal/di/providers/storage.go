package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelfshare/shelfshare-server/internal/config"
	"github.com/shelfshare/shelfshare-server/internal/logger"
	"github.com/shelfshare/shelfshare-server/internal/storage"
)

// ObjectStoreHandle wraps the share-image object store.
type ObjectStoreHandle struct {
	*storage.ObjectStore
}

// ProvideObjectStore provides the S3-compatible object store and ensures the
// bucket exists before anything renders into it.
func ProvideObjectStore(i do.Injector) (*ObjectStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := storage.New(cfg.Storage, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("Object storage ready",
		"endpoint", cfg.Storage.Endpoint,
		"bucket", cfg.Storage.Bucket,
	)

	return &ObjectStoreHandle{ObjectStore: store}, nil
}
