package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
)

// DecodeFunc rebuilds a model from the bytes written by its MarshalBinary.
type DecodeFunc func(data []byte) (domain.Regressor, error)

// ArtifactStore stores models and the manifest on the local filesystem.
type ArtifactStore struct {
	decode DecodeFunc
}

var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// NewArtifactStore creates a store that decodes models with decode.
func NewArtifactStore(decode DecodeFunc) *ArtifactStore {
	return &ArtifactStore{decode: decode}
}

// SaveModel serialises model and atomically replaces path.
func (s *ArtifactStore) SaveModel(ctx context.Context, path string, model domain.Regressor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if model == nil {
		return fmt.Errorf("save model: %w: nil model", domain.ErrInvalidInput)
	}

	data, err := model.MarshalBinary()
	if err != nil {
		return fmt.Errorf("serialising model: %w", err)
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save model: %w: %w", domain.ErrStorageFailure, err)
	}
	return nil
}

// LoadModel reads and decodes the model at path.
func (s *ArtifactStore) LoadModel(ctx context.Context, path string) (domain.Regressor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("model %s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading model %s: %w", path, err)
	}

	model, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	return model, nil
}

// WriteManifest atomically replaces the JSON manifest at path.
func (s *ArtifactStore) WriteManifest(ctx context.Context, path string, manifest domain.Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := writeFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w: %w", domain.ErrStorageFailure, err)
	}
	return nil
}

// ReadManifest reads the manifest at path.
func (s *ArtifactStore) ReadManifest(ctx context.Context, path string) (*domain.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("manifest %s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
