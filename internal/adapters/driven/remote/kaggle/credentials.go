package kaggle

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
)

// Environment variables holding credentials.
const (
	EnvUsername = "KAGGLE_USERNAME"
	EnvKey      = "KAGGLE_KEY"
)

// CredentialsProvider resolves credentials from the environment first and
// then from a kaggle.json file.
type CredentialsProvider struct {
	getenv func(string) string
	file   string
}

var _ driven.CredentialsProvider = (*CredentialsProvider)(nil)

// NewCredentialsProvider creates a provider reading the process environment
// and file. An empty file disables the file lookup.
func NewCredentialsProvider(file string) *CredentialsProvider {
	return &CredentialsProvider{getenv: os.Getenv, file: file}
}

// DefaultCredentialsFile returns ~/.kaggle/kaggle.json, or "" when the home
// directory is unknown.
func DefaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kaggle", "kaggle.json")
}

// Resolve returns the first usable credentials.
func (p *CredentialsProvider) Resolve() (*domain.Credentials, error) {
	env := &domain.Credentials{
		Username: p.getenv(EnvUsername),
		Key:      p.getenv(EnvKey),
		Origin:   "env",
	}
	if env.IsUsable() {
		return env, nil
	}

	if p.file == "" {
		return nil, fmt.Errorf("kaggle credentials: %w", domain.ErrNotFound)
	}

	data, err := os.ReadFile(p.file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("kaggle credentials: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p.file, err)
	}

	var creds domain.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.file, err)
	}
	if !creds.IsUsable() {
		return nil, fmt.Errorf("kaggle credentials in %s: %w", p.file, domain.ErrNotFound)
	}
	creds.Origin = p.file
	return &creds, nil
}
