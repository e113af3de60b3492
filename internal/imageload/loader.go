package imageload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/inamate/memecanvas/backend-go/internal/engine"
)

const defaultMaxBytes = 20 << 20 // 20MB

var (
	ErrEmptyURL       = errors.New("empty image url")
	ErrUnsupportedURL = errors.New("unsupported image url")
)

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) URLs.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithAssetDir serves "/assets/<file>" URLs from dir instead of the network.
func WithAssetDir(dir string) Option {
	return func(l *Loader) { l.assetDir = dir }
}

// WithMaxBytes caps the size of a fetched image.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) { l.maxBytes = n }
}

// Loader fetches and decodes background images. It understands http(s)
// URLs, data: URLs and locally stored assets. Each Load runs on its own
// goroutine; loads stop when the loader's context is cancelled.
type Loader struct {
	ctx      context.Context
	client   *http.Client
	assetDir string
	maxBytes int64
}

// New creates a loader bound to ctx.
func New(ctx context.Context, opts ...Option) *Loader {
	l := &Loader{
		ctx:      ctx,
		client:   http.DefaultClient,
		maxBytes: defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load implements engine.ImageLoader.
func (l *Loader) Load(rawURL string, done func(engine.Image, error)) {
	go func() {
		img, err := l.Fetch(l.ctx, rawURL)
		if err != nil {
			done(nil, err)
			return
		}
		done(img, nil)
	}()
}

// Fetch loads and decodes one image synchronously.
func (l *Loader) Fetch(ctx context.Context, rawURL string) (image.Image, error) {
	switch {
	case rawURL == "":
		return nil, ErrEmptyURL
	case strings.HasPrefix(rawURL, "data:"):
		return decodeDataURL(rawURL)
	case strings.HasPrefix(rawURL, "/assets/") && l.assetDir != "":
		return l.fetchAsset(strings.TrimPrefix(rawURL, "/assets/"))
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
	return l.fetchHTTP(ctx, u.String())
}

func (l *Loader) fetchHTTP(ctx context.Context, rawURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: unexpected status %s", resp.Status)
	}

	slog.Debug("image fetched", "url", rawURL, "contentType", resp.Header.Get("Content-Type"))
	return l.decode(resp.Body)
}

func (l *Loader) fetchAsset(name string) (image.Image, error) {
	// Asset names are flat; reject anything that could climb out of the dir.
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: asset %q", ErrUnsupportedURL, name)
	}

	f, err := os.Open(filepath.Join(l.assetDir, name))
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	return l.decode(f)
}

func (l *Loader) decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(io.LimitReader(r, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// decodeDataURL handles "data:[<mime>][;base64],<payload>".
func decodeDataURL(rawURL string) (image.Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(rawURL, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data url", ErrUnsupportedURL)
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		data = []byte(unescaped)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
