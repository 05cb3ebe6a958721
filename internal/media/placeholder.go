package media

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// thumbSize bounds the longest side of the image fed to the blurhash encoder.
const thumbSize = 64

// PlaceholderCache stores computed hashes keyed by path and modification time.
type PlaceholderCache interface {
	GetPlaceholder(ctx context.Context, path string, modTime int64) (string, bool, error)
	SetPlaceholder(ctx context.Context, path string, modTime int64, hash string) error
}

// Placeholders computes blurhash strings for local images under a root
// directory. Remote images and files outside the root get no placeholder.
type Placeholders struct {
	root   string
	cache  PlaceholderCache
	logger *slog.Logger
}

// NewPlaceholders creates a placeholder source. An empty root disables it.
func NewPlaceholders(root string, cache PlaceholderCache, logger *slog.Logger) *Placeholders {
	return &Placeholders{root: root, cache: cache, logger: logger}
}

// Placeholder returns the blurhash for a resolved image source, or "" when none
// can be computed. Failures are logged, never returned: a missing placeholder
// only means the client shows the plain fallback.
func (p *Placeholders) Placeholder(ctx context.Context, src string) string {
	if p == nil || p.root == "" || src == "" || IsRemote(src) {
		return ""
	}

	path, ok := p.localPath(src)
	if !ok {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	modTime := info.ModTime().UnixNano()

	if p.cache != nil {
		if hash, ok, err := p.cache.GetPlaceholder(ctx, path, modTime); err == nil && ok {
			return hash
		}
	}

	hash, err := ComputeBlurHash(path)
	if err != nil {
		p.logger.Debug("blurhash skipped", "path", path, "error", err)
		return ""
	}

	if p.cache != nil {
		if err := p.cache.SetPlaceholder(ctx, path, modTime, hash); err != nil {
			p.logger.Warn("failed to cache blurhash", "path", path, "error", err)
		}
	}
	return hash
}

// localPath maps src onto a file inside root, refusing anything that escapes it.
func (p *Placeholders) localPath(src string) (string, bool) {
	root, err := filepath.Abs(p.root)
	if err != nil {
		return "", false
	}
	path := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(src, "/")))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}

// ComputeBlurHash generates a 4x3 component BlurHash from an image file.
func ComputeBlurHash(imagePath string) (string, error) {
	file, err := os.Open(imagePath) //#nosec G304 -- path is confined to the asset root
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail scales img so its longest side is at most thumbSize.
func thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= thumbSize && h <= thumbSize {
		return img
	}

	dw, dh := thumbSize, thumbSize
	if w > h {
		dh = max(1, h*thumbSize/w)
	} else {
		dw = max(1, w*thumbSize/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
