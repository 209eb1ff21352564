package services

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
)

// mockRemote is a scripted driven.RemoteRepository.
type mockRemote struct {
	available   bool
	lastUpdated time.Time
	checkErr    error
	downloadErr error
	content     string

	mu        sync.Mutex
	downloads []string
}

func (m *mockRemote) Available() bool { return m.available }

func (m *mockRemote) LastUpdated(context.Context) (time.Time, error) {
	if !m.available {
		return time.Time{}, domain.ErrRemoteUnavailable
	}
	return m.lastUpdated, m.checkErr
}

func (m *mockRemote) Download(_ context.Context, dest string) error {
	m.mu.Lock()
	m.downloads = append(m.downloads, dest)
	m.mu.Unlock()
	if m.downloadErr != nil {
		return m.downloadErr
	}
	content := m.content
	if content == "" {
		content = "id,price\n1,100\n"
	}
	return os.WriteFile(dest, []byte(content), 0o644)
}

// mockAnalyticalStore records calls and serves a fixed raw table.
type mockAnalyticalStore struct {
	hasRaw     bool
	hasRawErr  error
	replaceErr error
	exportErr  error
	loadErr    error
	cleanErr   error
	raw        *domain.Table

	mu       sync.Mutex
	replaced []string
	exported []string
	filters  []driven.RawFilter
	clean    *domain.Table
}

var _ driven.AnalyticalStore = (*mockAnalyticalStore)(nil)

func (m *mockAnalyticalStore) HasRawTable(context.Context) (bool, error) {
	return m.hasRaw, m.hasRawErr
}

func (m *mockAnalyticalStore) ReplaceRawTable(_ context.Context, csvPath string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaced = append(m.replaced, csvPath)
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	m.hasRaw = true
	return 1, nil
}

func (m *mockAnalyticalStore) ExportSnapshot(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exported = append(m.exported, path)
	return m.exportErr
}

func (m *mockAnalyticalStore) LoadRaw(_ context.Context, filter driven.RawFilter) (*domain.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, filter)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.raw == nil {
		return domain.NewTable("datos_raw"), nil
	}
	return m.raw.Filter(func(int) bool { return true }), nil
}

func (m *mockAnalyticalStore) ReplaceCleanTable(_ context.Context, table *domain.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cleanErr != nil {
		return m.cleanErr
	}
	m.clean = table
	return nil
}

// constantModel predicts the same price for every record.
type constantModel struct {
	price float64
	err   error
}

func (m constantModel) Predict(records []domain.FeatureRecord) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]float64, len(records))
	for i := range out {
		out[i] = m.price
	}
	return out, nil
}

func (m constantModel) MarshalBinary() ([]byte, error) { return []byte("constant"), nil }

// mockArtifactStore serves models by path and can fail on demand.
type mockArtifactStore struct {
	mu        sync.Mutex
	models    map[string]domain.Regressor
	manifests map[string]domain.Manifest
	loadErr   error
	saveErr   error
	loads     int
	writes    []string
}

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{
		models:    make(map[string]domain.Regressor),
		manifests: make(map[string]domain.Manifest),
	}
}

func (m *mockArtifactStore) SaveModel(_ context.Context, path string, model domain.Regressor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.models[path] = model
	m.writes = append(m.writes, path)
	return nil
}

func (m *mockArtifactStore) LoadModel(_ context.Context, path string) (domain.Regressor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	model, ok := m.models[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return model, nil
}

func (m *mockArtifactStore) WriteManifest(_ context.Context, path string, manifest domain.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manifests[path] = manifest
	m.writes = append(m.writes, path)
	return nil
}

func (m *mockArtifactStore) ReadManifest(_ context.Context, path string) (*domain.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	manifest, ok := m.manifests[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &manifest, nil
}

func (m *mockArtifactStore) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

var errBoom = errors.New("boom")
