package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

const testModelPath = "/models/random_forest.gob.gz"

func TestModelCache_GetLoadsOnce(t *testing.T) {
	store := newMockArtifactStore()
	store.models[testModelPath] = constantModel{price: 100}
	cache := NewModelCache(testModelPath, store)

	assert.False(t, cache.Loaded())
	assert.Equal(t, testModelPath, cache.Path())

	for i := 0; i < 3; i++ {
		m, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, constantModel{price: 100}, m)
	}
	assert.True(t, cache.Loaded())
	assert.Equal(t, 1, store.loadCount())
}

func TestModelCache_LoadWithoutForceKeepsCached(t *testing.T) {
	store := newMockArtifactStore()
	store.models[testModelPath] = constantModel{price: 100}
	cache := NewModelCache(testModelPath, store)

	_, err := cache.Load(context.Background(), false)
	require.NoError(t, err)

	store.models[testModelPath] = constantModel{price: 200}
	m, err := cache.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, constantModel{price: 100}, m)

	m, err = cache.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, constantModel{price: 200}, m)
	assert.Equal(t, 2, store.loadCount())
}

func TestModelCache_MissingArtifact(t *testing.T) {
	cache := NewModelCache(testModelPath, newMockArtifactStore())

	m, err := cache.Get(context.Background())
	assert.Nil(t, m)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, cache.Loaded())
}

func TestModelCache_FailedReloadEmptiesCache(t *testing.T) {
	store := newMockArtifactStore()
	store.models[testModelPath] = constantModel{price: 100}
	cache := NewModelCache(testModelPath, store)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	store.loadErr = errBoom
	_, err = cache.Load(context.Background(), true)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.False(t, cache.Loaded())

	store.loadErr = nil
	m, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, constantModel{price: 100}, m)
}

func TestModelCache_ConcurrentGet(t *testing.T) {
	store := newMockArtifactStore()
	store.models[testModelPath] = constantModel{price: 100}
	cache := NewModelCache(testModelPath, store)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.loadCount())
}
