package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

func ingestionFixture(t *testing.T, remote *mockRemote, store *mockAnalyticalStore) (*IngestionService, domain.Settings) {
	t.Helper()
	settings := domain.DefaultSettings(t.TempDir())
	if store == nil {
		store = &mockAnalyticalStore{}
	}
	if remote == nil {
		return NewIngestionService(settings, nil, store), settings
	}
	return NewIngestionService(settings, remote, store), settings
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIngest_NoLocalNoRemote(t *testing.T) {
	store := &mockAnalyticalStore{}
	svc, _ := ingestionFixture(t, &mockRemote{available: false}, store)

	res := svc.Ingest(context.Background())

	assert.Equal(t, domain.StatusError, res.Status)
	assert.Equal(t, domain.ReasonSourceUnavailable, res.Reason)
	assert.False(t, res.OK())
	assert.Empty(t, store.replaced)
}

func TestIngest_NilRemoteUsesLocal(t *testing.T) {
	store := &mockAnalyticalStore{}
	svc, settings := ingestionFixture(t, nil, store)
	local := settings.Naming().VersionedPath(day(2024, 1, 1))
	touch(t, local)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, local, res.ProcessedFile)
	assert.True(t, res.Updated)
	assert.Equal(t, []string{local}, store.replaced)
	assert.Equal(t, []string{settings.Paths.Parquet}, store.exported)
}

func TestIngest_LegacyFileAlwaysLoads(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: day(2030, 1, 1)}
	store := &mockAnalyticalStore{hasRaw: true}
	svc, settings := ingestionFixture(t, remote, store)
	legacy := settings.Naming().LegacyPath()
	touch(t, legacy)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, legacy, res.ProcessedFile)
	assert.True(t, res.Updated)
	assert.Empty(t, remote.downloads)
}

func TestIngest_LocalCurrentAndRawTablePresent(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)}
	store := &mockAnalyticalStore{hasRaw: true}
	svc, settings := ingestionFixture(t, remote, store)
	local := settings.Naming().VersionedPath(day(2024, 3, 1))
	touch(t, local)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, domain.ReasonUpToDate, res.Reason)
	assert.False(t, res.Updated)
	assert.Equal(t, local, res.ProcessedFile)
	assert.Empty(t, remote.downloads)
	assert.Empty(t, store.replaced)
}

func TestIngest_LocalCurrentButRawTableMissing(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: day(2024, 3, 1)}
	store := &mockAnalyticalStore{hasRaw: false}
	svc, settings := ingestionFixture(t, remote, store)
	local := settings.Naming().VersionedPath(day(2024, 3, 1))
	touch(t, local)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.True(t, res.Updated)
	assert.Equal(t, domain.ReasonNone, res.Reason)
	assert.Equal(t, local, res.ProcessedFile)
	assert.Equal(t, []string{local}, store.replaced)
	assert.Equal(t, []string{settings.Paths.Parquet}, store.exported)
	assert.Empty(t, remote.downloads)
}

func TestSync_RemoteOlderThanLocal(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: time.Date(2024, 2, 20, 23, 59, 0, 0, time.UTC)}
	store := &mockAnalyticalStore{hasRaw: true}
	svc, settings := ingestionFixture(t, remote, store)
	local := settings.Naming().VersionedPath(day(2024, 3, 1))
	touch(t, local)

	decision, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, decision.RemoteChecked)
	assert.False(t, decision.NeedsUpdate)
	assert.False(t, decision.Downloaded)
	assert.Equal(t, local, decision.Snapshot.Path)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, domain.ReasonUpToDate, res.Reason)
	assert.False(t, res.Updated)
	assert.Empty(t, remote.downloads)
	assert.Empty(t, store.replaced)
	_, err = os.Stat(local)
	assert.NoError(t, err)
}

func TestIngest_RemoteOlderButRawTableMissing(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: day(2024, 1, 15)}
	store := &mockAnalyticalStore{hasRaw: false}
	svc, settings := ingestionFixture(t, remote, store)
	local := settings.Naming().VersionedPath(day(2024, 3, 1))
	touch(t, local)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.True(t, res.Updated)
	assert.Equal(t, domain.ReasonNone, res.Reason)
	assert.Equal(t, []string{local}, store.replaced)
	assert.Empty(t, remote.downloads)
}

func TestIngest_RemoteNewerDownloadsAndSupersedes(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)}
	store := &mockAnalyticalStore{hasRaw: true}
	svc, settings := ingestionFixture(t, remote, store)
	naming := settings.Naming()
	old := naming.VersionedPath(day(2024, 3, 1))
	touch(t, old)

	res := svc.Ingest(context.Background())

	fresh := naming.VersionedPath(day(2024, 4, 10))
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, fresh, res.ProcessedFile)
	assert.True(t, res.Updated)
	assert.Equal(t, []string{fresh}, remote.downloads)
	assert.Equal(t, []string{fresh}, store.replaced)

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err), "superseded file should be removed")
	_, err = os.Stat(fresh)
	assert.NoError(t, err)
}

func TestIngest_NoLocalDownloads(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: day(2024, 5, 2)}
	svc, settings := ingestionFixture(t, remote, nil)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, settings.Naming().VersionedPath(day(2024, 5, 2)), res.ProcessedFile)
}

func TestIngest_DownloadFailureKeepsLocal(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: day(2024, 4, 10), downloadErr: errBoom}
	store := &mockAnalyticalStore{hasRaw: true}
	svc, settings := ingestionFixture(t, remote, store)
	local := settings.Naming().VersionedPath(day(2024, 3, 1))
	touch(t, local)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, local, res.ProcessedFile)
	assert.Equal(t, domain.ReasonUpToDate, res.Reason)
	_, err := os.Stat(local)
	assert.NoError(t, err)
}

func TestIngest_DownloadFailureWithoutLocal(t *testing.T) {
	remote := &mockRemote{available: true, lastUpdated: day(2024, 4, 10), downloadErr: errBoom}
	svc, _ := ingestionFixture(t, remote, nil)

	res := svc.Ingest(context.Background())

	assert.Equal(t, domain.ReasonSourceUnavailable, res.Reason)
}

func TestIngest_RemoteCheckErrorUsesLocal(t *testing.T) {
	remote := &mockRemote{available: true, checkErr: domain.ErrRemoteUnavailable}
	store := &mockAnalyticalStore{hasRaw: true}
	svc, settings := ingestionFixture(t, remote, store)
	local := settings.Naming().VersionedPath(day(2024, 3, 1))
	touch(t, local)

	res := svc.Ingest(context.Background())

	require.True(t, res.OK(), res.Message)
	assert.Equal(t, domain.ReasonUpToDate, res.Reason)
	assert.Empty(t, remote.downloads)
}

func TestIngest_StorageFailures(t *testing.T) {
	tests := []struct {
		name  string
		store *mockAnalyticalStore
	}{
		{"replace", &mockAnalyticalStore{replaceErr: errBoom}},
		{"export", &mockAnalyticalStore{exportErr: errBoom}},
		{"has raw table", &mockAnalyticalStore{hasRawErr: errBoom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, settings := ingestionFixture(t, nil, tt.store)
			touch(t, settings.Naming().VersionedPath(day(2024, 1, 1)))

			res := svc.Ingest(context.Background())

			assert.Equal(t, domain.StatusError, res.Status)
			assert.Equal(t, domain.ReasonStorageFailure, res.Reason)
			assert.Contains(t, res.Message, "boom")
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	svc, settings := ingestionFixture(t, nil, nil)

	err := svc.Load(context.Background(), filepath.Join(settings.Paths.RawDir, "nope.csv"))
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}
