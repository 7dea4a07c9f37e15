package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/offgrid-solar-sizing/internal/domain"
)

// ObjectFetcher downloads an object from a bucket.
type ObjectFetcher interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// MaxWorkbookBytes caps how much of a local file or HTTP response is read.
const MaxWorkbookBytes = 32 << 20

// Loader resolves a catalog source string to a parsed catalog. Sources may
// be a local path, an http(s) URL or an s3://bucket/key location.
type Loader struct {
	HTTP     *http.Client
	Objects  ObjectFetcher
	MaxBytes int64
}

func NewLoader(objects ObjectFetcher) *Loader {
	return &Loader{
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Objects:  objects,
		MaxBytes: MaxWorkbookBytes,
	}
}

func (l *Loader) Load(ctx context.Context, source string) (*domain.Catalog, error) {
	data, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", source).Int("bytes", len(data)).Msg("catalog fetched")
	return ParseWorkbook(bytes.NewReader(data))
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("catalog: no source configured")
	}
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// plain path, or a Windows drive letter
		return l.readFile(source)
	}

	switch u.Scheme {
	case "file":
		return l.readFile(u.Path)
	case "http", "https":
		return l.fetchHTTP(ctx, source)
	case "s3":
		if l.Objects == nil {
			return nil, fmt.Errorf("catalog: s3 source %q but object storage is not configured", source)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("catalog: malformed s3 source %q", source)
		}
		return l.Objects.Download(ctx, u.Host, key)
	}
	return nil, fmt.Errorf("catalog: unsupported source scheme %q", u.Scheme)
}

func (l *Loader) fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	client := l.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog: download failed: %s", resp.Status)
	}
	return l.readAll(resp.Body, source)
}

func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return l.readAll(f, path)
}

func (l *Loader) readAll(r io.Reader, source string) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = MaxWorkbookBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, source, limit)
	}
	return data, nil
}
