package source

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// PDFSource renders the pages of a PDF document as images. Pages are
// rendered sequentially through a single document handle.
type PDFSource struct {
	doc *fitz.Document
	dpi int
}

func NewPDFSource(path string, dpi int) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &PDFSource{doc: doc, dpi: dpi}, nil
}

func (s *PDFSource) Count() int {
	return s.doc.NumPage()
}

func (s *PDFSource) Name(index int) string {
	return fmt.Sprintf("page_%03d", index+1)
}

func (s *PDFSource) Load(index int) (image.Image, error) {
	img, err := s.doc.ImageDPI(index, float64(s.dpi))
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrInvalidImage, index+1, err)
	}
	return img, nil
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
