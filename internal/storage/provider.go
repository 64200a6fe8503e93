// Package storage exposes an image directory: the watched inbox and the
// root that tool callers may upload from.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/starford/pictnote/internal/metadata"
	"github.com/starford/pictnote/internal/models"
)

// Provider is the interface for inbox file lookups.
type Provider interface {
	// Root returns the absolute directory all paths are relative to.
	Root() string
	// List returns every image file under dir (relative to root).
	List(dir string) ([]models.ImageFile, error)
	// Resolve turns a root-relative path into an absolute one, rejecting
	// paths that leave the root.
	Resolve(rel string) (string, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}

// IsImage reports whether path looks like an image. Dot files are never
// images; editors and downloaders use them for partial writes.
func IsImage(path string) bool {
	base := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		base = path[i+1:]
	}
	if base == "" || strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasPrefix(metadata.DetectMIME(path), "image/")
}

// Hidden reports whether any element of the root-relative path rel starts
// with a dot. Hidden entries are staging areas and are never picked up.
func Hidden(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
