package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/logger"
)

// VersionResolver finds the authoritative local dataset snapshot.
type VersionResolver struct {
	naming  domain.DatasetNaming
	pattern *regexp.Regexp
}

// NewVersionResolver creates a resolver for the given naming convention.
func NewVersionResolver(naming domain.DatasetNaming) *VersionResolver {
	return &VersionResolver{
		naming: naming,
		pattern: regexp.MustCompile(
			"^" + regexp.QuoteMeta(naming.Base) + `-(\d{4}-\d{2}-\d{2})\.` + regexp.QuoteMeta(naming.Ext) + "$",
		),
	}
}

// Resolve returns the legacy file when present, otherwise the most recently
// dated versioned file. Files whose date does not parse are skipped.
// Returns nil when no snapshot exists.
func (r *VersionResolver) Resolve() (*domain.Snapshot, error) {
	legacy := r.naming.LegacyPath()
	if info, err := os.Stat(legacy); err == nil && info.Mode().IsRegular() {
		logger.Debug("resolver: legacy file %s takes precedence", legacy)
		return &domain.Snapshot{Path: legacy, Legacy: true}, nil
	}

	return r.LatestVersioned()
}

// LatestVersioned returns the most recently dated versioned file, ignoring the legacy file.
func (r *VersionResolver) LatestVersioned() (*domain.Snapshot, error) {
	entries, err := os.ReadDir(r.naming.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read raw dir: %w", err)
	}

	var latest *domain.Snapshot
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := r.pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		date, err := time.Parse(domain.DateLayout, m[1])
		if err != nil {
			logger.Warn("resolver: ignoring %s: invalid date %q", entry.Name(), m[1])
			continue
		}
		if latest == nil || date.After(latest.Date) {
			latest = &domain.Snapshot{Path: filepath.Join(r.naming.Dir, entry.Name()), Date: date}
		}
	}
	return latest, nil
}
