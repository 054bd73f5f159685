// internal/images/resolver.go

// Package images resolves benchmark image references to pixel data.
// Decoding and normalization live behind the Loader interface; this
// package only owns the search-path logic.
package images

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrImageNotFound indicates an image reference absent from every search path.
var ErrImageNotFound = errors.New("images: image not found")

// Image is an opaque preprocessed image handle produced by the external
// vision preprocessor. The harness never inspects it.
type Image any

// Loader turns an on-disk image file into model-ready pixel data.
type Loader interface {
	Load(path string) (Image, error)
}

// RawLoader is the fallback Loader that hands the file bytes through
// untouched. Useful when the model collaborator does its own decoding.
type RawLoader struct{}

// Load reads the file and returns its raw bytes as the Image.
func (RawLoader) Load(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading image %s: %w", path, err)
	}
	return data, nil
}

// Resolver locates images by trying the primary data directory first and a
// secondary known location after it.
type Resolver struct {
	Primary  string
	Fallback string
	Loader   Loader
}

// Resolve finds name under the search path and loads it. Missing from both
// directories is fatal to the run, never a silent skip.
func (r *Resolver) Resolve(name string) (Image, error) {
	for _, dir := range []string{r.Primary, r.Fallback} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return r.Loader.Load(path)
		}
	}
	return nil, fmt.Errorf("%w: %q (searched %s and %s)", ErrImageNotFound, name, r.Primary, r.Fallback)
}
