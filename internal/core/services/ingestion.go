package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
	"github.com/custodia-labs/preciar/internal/core/ports/driving"
	"github.com/custodia-labs/preciar/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService resolves the authoritative raw file, syncs it with the
// remote repository when possible, and rebuilds the raw table and columnar snapshot.
type IngestionService struct {
	naming   domain.DatasetNaming
	resolver *VersionResolver
	remote   driven.RemoteRepository
	store    driven.AnalyticalStore
	parquet  string
}

// NewIngestionService creates an ingestion service.
// remote may be nil, in which case only local files are used.
func NewIngestionService(
	settings domain.Settings,
	remote driven.RemoteRepository,
	store driven.AnalyticalStore,
) *IngestionService {
	naming := settings.Naming()
	return &IngestionService{
		naming:   naming,
		resolver: NewVersionResolver(naming),
		remote:   remote,
		store:    store,
		parquet:  settings.Paths.Parquet,
	}
}

// Ingest runs resolve, sync and load. It never returns an error; failures
// are reported in the result.
func (s *IngestionService) Ingest(ctx context.Context) domain.IngestResult {
	logger.Section("Ingestion")

	if err := s.ensureDirectories(); err != nil {
		logger.Error("ingest: %v", err)
		return ingestFailure(domain.ReasonStorageFailure, err)
	}

	decision, err := s.Sync(ctx)
	if err != nil {
		logger.Error("ingest: %v", err)
		return ingestFailure(domain.ReasonStorageFailure, err)
	}
	if decision.Snapshot == nil {
		msg := "no raw dataset available locally and the remote repository is unavailable"
		logger.Error("ingest: %s", msg)
		return domain.IngestResult{
			Status:  domain.StatusError,
			Message: msg,
			Reason:  domain.ReasonSourceUnavailable,
		}
	}

	path := decision.Snapshot.Path
	if !decision.NeedsUpdate {
		exists, err := s.store.HasRawTable(ctx)
		if err != nil {
			logger.Error("ingest: %v", err)
			return ingestFailure(domain.ReasonStorageFailure, err)
		}
		if exists {
			logger.Info("ingest: %s is up to date, raw table unchanged", path)
			return domain.IngestResult{
				Status:        domain.StatusOK,
				Message:       "data already up to date",
				ProcessedFile: path,
				Reason:        domain.ReasonUpToDate,
			}
		}
		logger.Info("ingest: raw table missing, loading %s", path)
	}

	if err := s.Load(ctx, path); err != nil {
		logger.Error("ingest: %v", err)
		reason := domain.ReasonStorageFailure
		if errors.Is(err, domain.ErrSourceNotFound) {
			reason = domain.ReasonSourceNotFound
		}
		return ingestFailure(reason, err)
	}

	return domain.IngestResult{
		Status:        domain.StatusOK,
		Message:       "ingestion complete, raw table and columnar snapshot updated",
		ProcessedFile: path,
		Updated:       true,
	}
}

// Sync decides which file is authoritative and whether the raw table must be rebuilt.
// Remote failures degrade to using the local file. Only local I/O errors are returned.
func (s *IngestionService) Sync(ctx context.Context) (*domain.SyncDecision, error) {
	local, err := s.resolver.Resolve()
	if err != nil {
		return nil, err
	}

	if local != nil && local.Legacy {
		return &domain.SyncDecision{Snapshot: local, NeedsUpdate: true}, nil
	}

	remoteDate, ok := s.checkRemote(ctx)
	if !ok {
		if local != nil {
			logger.Info("ingest: remote unavailable, using local file %s", local.Path)
		}
		return &domain.SyncDecision{Snapshot: local}, nil
	}

	decision := &domain.SyncDecision{Snapshot: local, RemoteChecked: true}
	switch {
	case local == nil:
		logger.Info("ingest: no local snapshot, downloading version %s", remoteDate.Format(domain.DateLayout))
	case domain.NewerDay(remoteDate, local.Date):
		logger.Info("ingest: remote version %s is newer than local %s, downloading",
			remoteDate.Format(domain.DateLayout), local.Date.Format(domain.DateLayout))
	default:
		logger.Info("ingest: local file %s is current (%s)", local.Path, local.Date.Format(domain.DateLayout))
		return decision, nil
	}

	downloaded, err := s.download(ctx, remoteDate)
	if err != nil {
		logger.Error("ingest: download failed: %v", err)
		return decision, nil
	}

	decision.Snapshot = downloaded
	decision.NeedsUpdate = true
	decision.Downloaded = true
	if local != nil && local.Path != downloaded.Path {
		decision.Superseded = local.Path
		if err := os.Remove(local.Path); err != nil {
			logger.Warn("ingest: could not remove superseded file %s: %v", local.Path, err)
		} else {
			logger.Info("ingest: removed superseded file %s", local.Path)
		}
	}
	return decision, nil
}

// Load rebuilds the raw table from path and exports the columnar snapshot.
func (s *IngestionService) Load(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("load %s: %w", path, domain.ErrSourceNotFound)
	}

	rows, err := s.store.ReplaceRawTable(ctx, path)
	if err != nil {
		return fmt.Errorf("replace raw table: %w", err)
	}
	logger.Info("ingest: raw table rebuilt from %s (%d rows)", path, rows)

	if err := s.store.ExportSnapshot(ctx, s.parquet); err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	logger.Info("ingest: columnar snapshot written to %s", s.parquet)
	return nil
}

func (s *IngestionService) checkRemote(ctx context.Context) (time.Time, bool) {
	if s.remote == nil || !s.remote.Available() {
		logger.Warn("ingest: no remote credentials, skipping freshness check")
		return time.Time{}, false
	}
	updated, err := s.remote.LastUpdated(ctx)
	if err != nil {
		logger.Warn("ingest: remote check failed: %v", err)
		return time.Time{}, false
	}
	return updated, true
}

func (s *IngestionService) download(ctx context.Context, date time.Time) (*domain.Snapshot, error) {
	dest := s.naming.VersionedPath(date)
	if err := s.remote.Download(ctx, dest); err != nil {
		return nil, err
	}
	logger.Info("ingest: downloaded %s", dest)
	y, m, d := date.UTC().Date()
	return &domain.Snapshot{Path: dest, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}, nil
}

func (s *IngestionService) ensureDirectories() error {
	for _, dir := range []string{s.naming.Dir, filepath.Dir(s.parquet)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func ingestFailure(reason domain.Reason, err error) domain.IngestResult {
	return domain.IngestResult{
		Status:  domain.StatusError,
		Message: err.Error(),
		Reason:  reason,
	}
}
