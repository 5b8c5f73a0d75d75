// Package fetch downloads and unpacks corpus archives from the WIT3
// mirror.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/nmtkit/iwslt/pkg/archive"
	"github.com/nmtkit/iwslt/pkg/corpus"
)

// DefaultBaseURL is the WIT3 archive mirror.
const DefaultBaseURL = "https://wit3.fbk.eu/archive"

// Fetcher downloads dataset archives and unpacks them into the local
// layout the corpus readers expect.
type Fetcher struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds fetcher configuration.
type Config struct {
	// BaseURL overrides the archive mirror (optional).
	BaseURL string
	// Client is the HTTP client used for downloads (optional).
	Client *http.Client
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{
		baseURL: cfg.BaseURL,
		client:  cfg.Client,
		logger:  cfg.Logger,
	}
}

// Result describes the outcome of a Fetch.
type Result struct {
	Dataset     string `json:"dataset"`
	ArchivePath string `json:"archive_path"`
	Downloaded  bool   `json:"downloaded"`
	Extracted   bool   `json:"extracted"`
	SHA256      string `json:"sha256,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}

// URL returns the download URL for a dataset. The doubled slash after
// the year segment is part of the mirror's path layout and must not be
// collapsed.
func (f *Fetcher) URL(ds corpus.Dataset) string {
	return fmt.Sprintf("%s/%s-01//texts/%s/%s/%s.tgz",
		f.baseURL, ds.Year, ds.SourceLang(), ds.TargetLang(), ds.Pair)
}

// Fetch downloads a dataset archive into root unless it is already
// present, then unpacks it. When the archive exists and force is false,
// Fetch performs no network request and no extraction. With force, the
// archive is re-downloaded and re-extracted over the existing tree.
func (f *Fetcher) Fetch(ctx context.Context, root string, ds corpus.Dataset, force bool) (Result, error) {
	res := Result{
		Dataset:     ds.Key(),
		ArchivePath: filepath.Join(root, ds.ArchiveName()),
	}

	if !force {
		if _, err := os.Stat(res.ArchivePath); err == nil {
			f.logger.Debug("archive already present", "dataset", ds.Key(), "path", res.ArchivePath)
			return res, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("checking for archive: %w", err)
		}
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return res, fmt.Errorf("creating data directory: %w", err)
	}

	sum, size, err := f.download(ctx, ds, res.ArchivePath)
	if err != nil {
		return res, err
	}
	res.Downloaded = true
	res.SHA256 = sum
	res.SizeBytes = size

	dir, err := f.Extract(root, ds)
	if err != nil {
		return res, err
	}
	res.Extracted = true
	f.logger.Info("dataset ready", "dataset", ds.Key(), "dir", dir)
	return res, nil
}

// Extract unpacks an already downloaded archive into its extraction
// directory under root and returns that directory.
func (f *Fetcher) Extract(root string, ds corpus.Dataset) (string, error) {
	archivePath := filepath.Join(root, ds.ArchiveName())
	dir := filepath.Join(root, ds.LocalDir())
	f.logger.Debug("extracting archive", "dataset", ds.Key(), "dir", dir)
	if err := archive.ExtractTarGz(archivePath, dir); err != nil {
		return "", fmt.Errorf("extracting %s: %w", archivePath, err)
	}
	return dir, nil
}

// download streams the archive to dest, accumulating a SHA-256 digest
// and byte count on the way. A partially written file is removed on
// failure.
func (f *Fetcher) download(ctx context.Context, ds corpus.Dataset, dest string) (string, int64, error) {
	url := f.URL(ds)
	f.logger.Info("downloading archive", "dataset", ds.Key(), "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("building request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", 0, fmt.Errorf("creating %s: %w", dest, err)
	}
	hash := sha256.New()
	size, err := io.Copy(out, io.TeeReader(resp.Body, hash))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(dest)
		return "", 0, fmt.Errorf("writing %s: %w", dest, err)
	}

	f.logger.Info("download complete", "dataset", ds.Key(), "bytes", size)
	return hex.EncodeToString(hash.Sum(nil)), size, nil
}

// FileSHA256 returns the hex-encoded SHA-256 digest of a file on disk.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
