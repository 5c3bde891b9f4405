package source

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// DirSource serves image files from a directory in lexicographic
// order, or a single image file.
type DirSource struct {
	paths []string
}

func NewDirSource(path string) (*DirSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	return &DirSource{paths: paths}, nil
}

func (s *DirSource) Count() int {
	return len(s.paths)
}

func (s *DirSource) Name(index int) string {
	base := filepath.Base(s.paths[index])
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *DirSource) Load(index int) (image.Image, error) {
	path := s.paths[index]
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, filepath.Base(path), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidImage, filepath.Base(path), err)
	}
	return img, nil
}

func (s *DirSource) Close() error {
	return nil
}

// NamedImage pairs a pre-decoded image with the name used for its
// output clip.
type NamedImage struct {
	Name  string
	Image image.Image
}

// ListSource serves images already held in memory, in the order given.
type ListSource struct {
	items []NamedImage
}

func NewListSource(items []NamedImage) *ListSource {
	return &ListSource{items: items}
}

func (s *ListSource) Count() int {
	return len(s.items)
}

func (s *ListSource) Name(index int) string {
	return s.items[index].Name
}

func (s *ListSource) Load(index int) (image.Image, error) {
	img := s.items[index].Image
	if img == nil {
		return nil, fmt.Errorf("%w: %s: no image data", ErrInvalidImage, s.items[index].Name)
	}
	return img, nil
}

func (s *ListSource) Close() error {
	return nil
}
