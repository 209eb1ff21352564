package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore keeps models and manifests keyed by path, for testing.
// Models are held as values; nothing is serialised.
type ArtifactStore struct {
	mu        sync.RWMutex
	models    map[string]domain.Regressor
	manifests map[string]domain.Manifest
	writes    []string
}

// NewArtifactStore creates a new in-memory artifact store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		models:    make(map[string]domain.Regressor),
		manifests: make(map[string]domain.Manifest),
	}
}

// SaveModel stores model under path.
func (s *ArtifactStore) SaveModel(ctx context.Context, path string, model domain.Regressor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if model == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[path] = model
	s.writes = append(s.writes, path)
	return nil
}

// LoadModel returns domain.ErrNotFound if nothing was saved under path.
func (s *ArtifactStore) LoadModel(_ context.Context, path string) (domain.Regressor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, ok := s.models[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return model, nil
}

// WriteManifest replaces the manifest at path.
func (s *ArtifactStore) WriteManifest(ctx context.Context, path string, manifest domain.Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]domain.ManifestEntry, len(manifest.Models))
	copy(entries, manifest.Models)
	s.manifests[path] = domain.Manifest{Models: entries}
	s.writes = append(s.writes, path)
	return nil
}

// ReadManifest returns domain.ErrNotFound if no manifest was written to path.
func (s *ArtifactStore) ReadManifest(_ context.Context, path string) (*domain.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	manifest, ok := s.manifests[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &manifest, nil
}

// Writes returns every written path in write order.
func (s *ArtifactStore) Writes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.writes...)
}
