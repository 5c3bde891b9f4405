package renderer

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// CameraState represents the virtual camera over a source image at a
// single moment: where it looks and how far it is zoomed in.
type CameraState struct {
	X     float64 // Pan X position (window center in source pixels)
	Y     float64 // Pan Y position (window center in source pixels)
	Zoom  float64 // Zoom level (1.0 = full frame)
	WrapX bool    // Wrap the window around the horizontal seam instead of clamping
}

// Render synthesizes one canvas-sized frame: it crops the camera
// window out of src and resamples it to width x height with bilinear
// filtering. The window keeps the source aspect; the canvas does not
// have to, so mismatched aspects stretch.
func Render(src image.Image, width, height int, cam CameraState) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	RenderInto(dst, src, cam)
	return dst
}

// RenderInto renders a frame into an existing canvas buffer,
// overwriting every pixel.
func RenderInto(dst *image.RGBA, src image.Image, cam CameraState) {
	if cam.Zoom < 1.0 {
		cam.Zoom = 1.0
	}
	if cam.WrapX {
		renderWrapped(dst, src, cam)
		return
	}
	win := window(src.Bounds(), cam)
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, win, xdraw.Src, nil)
}

// window computes the integer crop rectangle for a camera state. The
// window size is the source size divided by zoom; when the panned
// center would push the window past an edge, the window is shifted
// back inside by the minimum amount, never resized.
func window(b image.Rectangle, cam CameraState) image.Rectangle {
	srcW, srcH := b.Dx(), b.Dy()
	w, h := windowSize(srcW, srcH, cam.Zoom)

	x0 := int(math.Round(cam.X - float64(w)/2))
	y0 := int(math.Round(cam.Y - float64(h)/2))
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x0+w > srcW {
		x0 = srcW - w
	}
	if y0+h > srcH {
		y0 = srcH - h
	}

	return image.Rect(b.Min.X+x0, b.Min.Y+y0, b.Min.X+x0+w, b.Min.Y+y0+h)
}

func windowSize(srcW, srcH int, zoom float64) (int, int) {
	w := int(math.Round(float64(srcW) / zoom))
	h := int(math.Round(float64(srcH) / zoom))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w > srcW {
		w = srcW
	}
	if h > srcH {
		h = srcH
	}
	return w, h
}

// renderWrapped treats the source as horizontally tiled. A window that
// crosses the right edge is split into two source slices, each scaled
// onto its proportional share of the canvas, so the sweep is seamless
// at the wrap point. Vertically the window clamps as usual.
func renderWrapped(dst *image.RGBA, src image.Image, cam CameraState) {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	w, h := windowSize(srcW, srcH, cam.Zoom)

	y0 := int(math.Round(cam.Y - float64(h)/2))
	if y0 < 0 {
		y0 = 0
	}
	if y0+h > srcH {
		y0 = srcH - h
	}

	off := math.Mod(cam.X-float64(w)/2, float64(srcW))
	if off < 0 {
		off += float64(srcW)
	}
	x0 := int(math.Round(off))
	if x0 >= srcW {
		x0 -= srcW
	}

	if x0+w <= srcW {
		sr := image.Rect(b.Min.X+x0, b.Min.Y+y0, b.Min.X+x0+w, b.Min.Y+y0+h)
		xdraw.BiLinear.Scale(dst, dst.Bounds(), src, sr, xdraw.Src, nil)
		return
	}

	db := dst.Bounds()
	leftW := srcW - x0
	split := db.Min.X + int(math.Round(float64(db.Dx())*float64(leftW)/float64(w)))

	left := image.Rect(b.Min.X+x0, b.Min.Y+y0, b.Max.X, b.Min.Y+y0+h)
	right := image.Rect(b.Min.X, b.Min.Y+y0, b.Min.X+w-leftW, b.Min.Y+y0+h)
	xdraw.BiLinear.Scale(dst, image.Rect(db.Min.X, db.Min.Y, split, db.Max.Y), src, left, xdraw.Src, nil)
	xdraw.BiLinear.Scale(dst, image.Rect(split, db.Min.Y, db.Max.X, db.Max.Y), src, right, xdraw.Src, nil)
}
