// Package images loads the pixels of replaced elements. A Store resolves
// the src of an <img> against a base directory or decodes it from a data
// URI, and caches the result.
//
// A Store supplies natural sizes to the HTML loader (dom.ImageResolver) and
// pixels to the painter.
package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"quill/pkg/dom"
)

// tracer traces with key 'quill.images'.
func tracer() tracing.Trace {
	return tracing.Select("quill.images")
}

// ErrNotDataURI is returned for malformed data URIs.
var ErrNotDataURI = errors.New("images: not a base64 data uri")

// Store caches decoded images by src. It is safe for concurrent use.
type Store struct {
	base string

	mu     sync.RWMutex
	bySrc  map[string]image.Image
	byHndl map[uint64]image.Image
	failed map[string]error
}

var _ dom.ImageResolver = (*Store)(nil)

// NewStore creates a store resolving relative paths against base.
func NewStore(base string) *Store {
	return &Store{
		base:   base,
		bySrc:  make(map[string]image.Image),
		byHndl: make(map[uint64]image.Image),
		failed: make(map[string]error),
	}
}

// Load returns the image for src, decoding it on first use. Failures are
// cached as well.
func (s *Store) Load(src string) (image.Image, error) {
	s.mu.RLock()
	img, ok := s.bySrc[src]
	err := s.failed[src]
	s.mu.RUnlock()
	if ok || err != nil {
		return img, err
	}

	if IsDataURI(src) {
		img, err = LoadDataURI(src)
	} else {
		img, err = s.loadFile(src)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		tracer().Errorf("image %q: %v", abbreviate(src), err)
		s.failed[src] = err
		return nil, err
	}
	s.bySrc[src] = img
	s.byHndl[dom.ImageHandle(src)] = img
	return img, nil
}

// ImageSize returns the natural size of the image at src.
func (s *Store) ImageSize(src string) (width, height float64, ok bool) {
	img, err := s.Load(src)
	if err != nil {
		return 0, 0, false
	}
	b := img.Bounds()
	return float64(b.Dx()), float64(b.Dy()), true
}

// Image returns a previously loaded image by its dom handle.
func (s *Store) Image(handle uint64) (image.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.byHndl[handle]
	return img, ok
}

func (s *Store) loadFile(src string) (image.Image, error) {
	path := src
	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if !filepath.IsAbs(path) && s.base != "" {
		path = filepath.Join(s.base, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("images: decode %s: %w", path, err)
	}
	return img, nil
}

// IsDataURI reports a data: URI.
func IsDataURI(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// LoadDataURI decodes a base64 data URI.
func LoadDataURI(uri string) (image.Image, error) {
	if !IsDataURI(uri) {
		return nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(uri[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrNotDataURI
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURI, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("images: decode data uri: %w", err)
	}
	return img, nil
}

func abbreviate(src string) string {
	if len(src) > 40 {
		return src[:40] + "..."
	}
	return src
}
