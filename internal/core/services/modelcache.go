package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
	"github.com/custodia-labs/preciar/internal/logger"
)

// Ensure ModelCache implements the interface.
var _ driving.ModelCache = (*ModelCache)(nil)

// ModelCache is a single-slot cache of the serving model.
// Readers see the slot through an atomic pointer; loads are serialised.
type ModelCache struct {
	path  string
	store driven.ArtifactStore

	loadMu  sync.Mutex
	current atomic.Pointer[cachedModel]
}

type cachedModel struct {
	model domain.Regressor
}

// NewModelCache creates an empty cache reading from path.
func NewModelCache(path string, store driven.ArtifactStore) *ModelCache {
	return &ModelCache{path: path, store: store}
}

// Get returns the cached model, loading it on first use.
func (c *ModelCache) Get(ctx context.Context) (domain.Regressor, error) {
	if m := c.current.Load(); m != nil {
		return m.model, nil
	}
	return c.Load(ctx, false)
}

// Load reads the artifact and swaps it in. Without force an already cached
// model is returned as is. A failed load leaves the cache empty.
func (c *ModelCache) Load(ctx context.Context, force bool) (domain.Regressor, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if !force {
		if m := c.current.Load(); m != nil {
			return m.model, nil
		}
	}

	model, err := c.store.LoadModel(ctx, c.path)
	if err != nil {
		c.current.Store(nil)
		logger.Warn("cache: load %s failed: %v", c.path, err)
		return nil, fmt.Errorf("load model %s: %w: %w", c.path, domain.ErrModelUnavailable, err)
	}

	c.current.Store(&cachedModel{model: model})
	logger.Info("cache: model loaded from %s", c.path)
	return model, nil
}

// Loaded reports whether a model is cached.
func (c *ModelCache) Loaded() bool {
	return c.current.Load() != nil
}

// Path returns the artifact path.
func (c *ModelCache) Path() string {
	return c.path
}
