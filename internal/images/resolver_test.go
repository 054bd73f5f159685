// internal/images/resolver_test.go
package images

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeImage(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
}

func TestResolvePrimaryWins(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	writeImage(t, primary, "a.jpg", []byte("primary"))
	writeImage(t, fallback, "a.jpg", []byte("fallback"))

	r := &Resolver{Primary: primary, Fallback: fallback, Loader: RawLoader{}}
	img, err := r.Resolve("a.jpg")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !bytes.Equal(img.([]byte), []byte("primary")) {
		t.Fatalf("expected primary copy, got %q", img)
	}
}

func TestResolveFallsBack(t *testing.T) {
	primary := t.TempDir()
	fallback := t.TempDir()
	writeImage(t, fallback, "b.jpg", []byte("fallback"))

	r := &Resolver{Primary: primary, Fallback: fallback, Loader: RawLoader{}}
	img, err := r.Resolve("b.jpg")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !bytes.Equal(img.([]byte), []byte("fallback")) {
		t.Fatalf("expected fallback copy, got %q", img)
	}
}

func TestResolveMissingEverywhere(t *testing.T) {
	r := &Resolver{Primary: t.TempDir(), Fallback: t.TempDir(), Loader: RawLoader{}}
	if _, err := r.Resolve("missing.jpg"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}
