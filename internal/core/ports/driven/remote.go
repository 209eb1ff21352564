package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// RemoteRepository is the external repository publishing the dataset.
// Every call must be bounded by a timeout.
type RemoteRepository interface {
	// Available reports whether usable credentials were found.
	// When false, LastUpdated and Download return domain.ErrRemoteUnavailable.
	Available() bool

	// LastUpdated returns when the dataset was last published.
	LastUpdated(ctx context.Context) (time.Time, error)

	// Download fetches the dataset file and writes it to dest,
	// overwriting any existing file.
	Download(ctx context.Context, dest string) error
}

// CredentialsProvider resolves remote repository credentials.
type CredentialsProvider interface {
	// Resolve returns the first usable credentials in priority order.
	// Returns domain.ErrNotFound when none are configured.
	Resolve() (*domain.Credentials, error)
}
