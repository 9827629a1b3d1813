package renderer

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ankek/terraform-provider-labelprint/internal/cache"
	"github.com/ankek/terraform-provider-labelprint/internal/element"
)

// ImageLoader fetches and decodes the bitmap behind an image element source
type ImageLoader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

// Loader reads images from local files or http(s) URLs
type Loader struct {
	baseDir string
	client  *retryablehttp.Client
}

// NewLoader creates a loader resolving relative paths against baseDir.
// HTTP fetches are attempted once: rendering never retries.
func NewLoader(baseDir string) *Loader {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	client.HTTPClient.Timeout = 30 * time.Second
	return &Loader{baseDir: baseDir, client: client}
}

// Load fetches and decodes an image
func (l *Loader) Load(ctx context.Context, source string) (image.Image, error) {
	if source == "" {
		return nil, fmt.Errorf("image source is empty")
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetch(ctx, source)
	}

	path := source
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image %s: status %d", url, resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", url, err)
	}
	return img, nil
}

func (r *Renderer) renderImage(ctx context.Context, source string, w, h int) (Artifact, error) {
	key := cache.Key{
		Kind:   string(element.KindImage),
		Value:  source,
		Width:  float64(w),
		Height: float64(h),
	}
	return r.cache.GetOrRender(key, func() (Artifact, error) {
		if w <= 0 || h <= 0 {
			return nil, fmt.Errorf("image element has an empty box")
		}
		src, err := r.loader.Load(ctx, source)
		if err != nil {
			return nil, err
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
		return &Bitmap{Image: dst}, nil
	})
}
