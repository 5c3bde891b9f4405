package source

import (
	"errors"
	"image"
	"strings"
)

// ErrInvalidImage marks an input that exists but cannot be used as a
// conversion source: unreadable, undecodable or empty.
var ErrInvalidImage = errors.New("invalid image")

// Source supplies the ordered input set of a conversion run. Count and
// Name are cheap; Load decodes on demand so at most one image is held
// in memory at a time.
type Source interface {
	Count() int
	Name(index int) string
	Load(index int) (image.Image, error)
	Close() error
}

// Open builds a source for a path: a directory of images, a single
// image file, or a PDF document rendered page by page at the given
// DPI.
func Open(path string, dpi int) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewPDFSource(path, dpi)
	}
	return NewDirSource(path)
}
