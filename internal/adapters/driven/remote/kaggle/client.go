package kaggle

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
	"github.com/custodia-labs/preciar/internal/logger"
)

// DefaultBaseURL is the public Kaggle API root.
const DefaultBaseURL = "https://www.kaggle.com/api/v1"

// lastUpdatedLayouts are the timestamp formats seen in dataset metadata.
var lastUpdatedLayouts = []string{
	"2006-01-02T15:04:05.999999Z",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// Dataset is the "owner/name" dataset slug.
	Dataset string

	// Member is the file extracted from the downloaded archive.
	Member string

	// Timeout bounds metadata requests.
	Timeout time.Duration

	// DownloadTimeout bounds the archive download. Zero leaves it bounded
	// only by the caller's context.
	DownloadTimeout time.Duration

	// RatePerSecond throttles requests. Defaults to DefaultRate.
	RatePerSecond float64
}

// Client talks to the Kaggle datasets API.
type Client struct {
	cfg         Config
	http        *http.Client
	rateLimiter *RateLimiter
	creds       *domain.Credentials
}

var _ driven.RemoteRepository = (*Client)(nil)

// NewClient creates a client. Credentials are resolved once; when none are
// usable the client is inert.
func NewClient(cfg Config, provider driven.CredentialsProvider, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RatePerSecond == 0 {
		cfg.RatePerSecond = DefaultRate
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		cfg:         cfg,
		http:        httpClient,
		rateLimiter: NewRateLimiter(cfg.RatePerSecond),
	}

	if provider != nil {
		creds, err := provider.Resolve()
		switch {
		case err == nil:
			c.creds = creds
			logger.Debug("kaggle: using credentials from %s", creds.Origin)
		case errors.Is(err, domain.ErrNotFound):
			logger.Debug("kaggle: no credentials configured, remote sync disabled")
		default:
			logger.Warn("kaggle: resolving credentials: %v", err)
		}
	}
	return c
}

// Available reports whether usable credentials were found.
func (c *Client) Available() bool {
	return c.creds.IsUsable()
}

type datasetMetadata struct {
	LastUpdated string `json:"lastUpdated"`
}

// LastUpdated returns when the dataset was last published.
func (c *Client) LastUpdated(ctx context.Context) (time.Time, error) {
	if !c.Available() {
		return time.Time{}, domain.ErrRemoteUnavailable
	}

	ctx, cancel := withTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.get(ctx, "/datasets/view/"+c.cfg.Dataset)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	var meta datasetMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}
	return parseLastUpdated(meta.LastUpdated)
}

func parseLastUpdated(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing lastUpdated", ErrInvalidMetadata)
	}
	for _, layout := range lastUpdatedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable lastUpdated %q", ErrInvalidMetadata, s)
}

// Download fetches the dataset archive and writes the configured member to dest.
func (c *Client) Download(ctx context.Context, dest string) error {
	if !c.Available() {
		return domain.ErrRemoteUnavailable
	}

	ctx, cancel := withTimeout(ctx, c.cfg.DownloadTimeout)
	defer cancel()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	archive, err := os.CreateTemp(dir, ".download-*.zip")
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer os.Remove(archive.Name())
	defer archive.Close()

	resp, err := c.get(ctx, "/datasets/download/"+c.cfg.Dataset)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	size, err := io.Copy(archive, resp.Body)
	if err != nil {
		return fmt.Errorf("downloading archive: %w", err)
	}
	logger.Debug("kaggle: downloaded %d bytes", size)

	return extractMember(archive, size, c.cfg.Member, dest)
}

// extractMember copies the archive entry named member (matched by base name)
// into a temp file next to dest and renames it over dest.
func extractMember(r io.ReaderAt, size int64, member, dest string) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if f.Name == member || path.Base(f.Name) == member {
			entry = f
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, member)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", entry.Name, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".extract-*.csv")
	if err != nil {
		return fmt.Errorf("creating extract file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("extracting %s: %w", entry.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing extract file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("renaming to %s: %w", dest, err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// get performs an authenticated GET and returns the response when it is 2xx.
// The caller closes the body.
func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := c.cfg.BaseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, URL: url}
	}
	return resp, nil
}
