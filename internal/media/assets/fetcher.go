// Package assets downloads remote pictures referenced by seed documents and
// persists them in the uploads directory.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/untdf/catalog/internal/errors"
	"github.com/untdf/catalog/internal/media/images"
	"github.com/untdf/catalog/internal/ratelimit"
)

const (
	// DefaultTimeout bounds a single download.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxSize limits download size to prevent memory exhaustion.
	DefaultMaxSize = 10 * 1024 * 1024 // 10MB

	defaultExtension = "jpg"
)

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Config holds fetcher settings. Zero values fall back to the defaults.
type Config struct {
	Timeout time.Duration
	MaxSize int64
	Rate    float64 // Requests per second per host
	Burst   int
}

// Fetcher retrieves remote images and stores them under generated names.
type Fetcher struct {
	httpClient *http.Client
	storage    *images.Storage
	limiter    *ratelimit.KeyedRateLimiter
	timeout    time.Duration
	maxSize    int64
	logger     *slog.Logger
}

// NewFetcher creates a fetcher that writes into storage.
func NewFetcher(storage *images.Storage, cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 5
	}
	if cfg.Burst < 1 {
		cfg.Burst = 5
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		storage:    storage,
		limiter:    ratelimit.New(cfg.Rate, cfg.Burst),
		timeout:    cfg.Timeout,
		maxSize:    cfg.MaxSize,
		logger:     logger,
	}
}

// Fetch downloads rawURL and stores it as baseName_<random>.<ext>, returning
// the public path of the stored file. Any failure is an ASSET_FAILURE error.
//
// Caller cancellation is not propagated: a fetch that has started runs until
// it completes or hits the fetcher's own timeout.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, baseName string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domainerrors.AssetFailure("fetch "+rawURL, fmt.Errorf("invalid image URL"))
	}

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	if err := f.limiter.Wait(fetchCtx, u.Host); err != nil {
		return "", domainerrors.AssetFailure("fetch "+rawURL, fmt.Errorf("rate limit: %w", err))
	}

	data, err := f.download(fetchCtx, u.String())
	if err != nil {
		return "", domainerrors.AssetFailure("fetch "+rawURL, err)
	}

	filename := fmt.Sprintf("%s_%s.%s", sanitizeBaseName(baseName), randomSuffix(), Extension(u.Path))
	publicPath, err := f.storage.Save(filename, data)
	if err != nil {
		return "", domainerrors.AssetFailure("store "+rawURL, err)
	}

	f.logger.Debug("downloaded asset",
		"url", rawURL,
		"path", publicPath,
		"size", len(data),
	)
	return publicPath, nil
}

// Shutdown stops the per-host limiter.
func (f *Fetcher) Shutdown() error {
	f.limiter.Stop()
	return nil
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized bodies.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxSize)
	}
	if len(data) == 0 {
		return nil, errors.New("empty response body")
	}
	return data, nil
}

// Extension returns the storage extension for a URL path: its lowercased
// suffix when allowed, jpg otherwise.
func Extension(urlPath string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(urlPath), "."))
	if allowedExtensions[ext] {
		return ext
	}
	return defaultExtension
}

// Allowed reports whether ext (without the dot) is an accepted picture extension.
func Allowed(ext string) bool {
	return allowedExtensions[strings.ToLower(ext)]
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// sanitizeBaseName keeps letters, digits, '-' and '_' so the name is a safe bare filename.
func sanitizeBaseName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "asset"
	}
	return b.String()
}
