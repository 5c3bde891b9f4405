package renderer

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	xdraw "golang.org/x/image/draw"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// halvesImage is red on the left half and blue on the right half.
func halvesImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestRenderProducesCanvasSize(t *testing.T) {
	src := solidImage(30, 20, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	frame := Render(src, 640, 360, CameraState{X: 15, Y: 10, Zoom: 1.2})
	b := frame.Bounds()
	if b.Dx() != 640 || b.Dy() != 360 {
		t.Errorf("expected 640x360 canvas, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderOnePixelSource(t *testing.T) {
	c := color.RGBA{R: 200, G: 30, B: 40, A: 255}
	src := solidImage(1, 1, c)

	frame := Render(src, 64, 48, CameraState{X: 0.5, Y: 0.5, Zoom: 1.15})
	b := frame.Bounds()
	if b.Dx() != 64 || b.Dy() != 48 {
		t.Fatalf("expected 64x48 canvas, got %dx%d", b.Dx(), b.Dy())
	}
	for _, p := range []image.Point{{0, 0}, {32, 24}, {63, 47}} {
		if got := frame.RGBAAt(p.X, p.Y); got != c {
			t.Errorf("pixel %v: expected %v, got %v", p, c, got)
		}
	}
}

func TestRenderFullFrameMatchesPlainScale(t *testing.T) {
	src := halvesImage(40, 30)

	got := Render(src, 64, 64, CameraState{X: 20, Y: 15, Zoom: 1.0})

	want := image.NewRGBA(image.Rect(0, 0, 64, 64))
	xdraw.BiLinear.Scale(want, want.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	if !bytes.Equal(got.Pix, want.Pix) {
		t.Error("full-frame render differs from a plain bilinear scale")
	}
}

func TestWindowStaysInsideBounds(t *testing.T) {
	b := image.Rect(0, 0, 100, 60)
	cams := []CameraState{
		{X: 0, Y: 0, Zoom: 2.0},
		{X: 100, Y: 60, Zoom: 2.0},
		{X: 50, Y: 30, Zoom: 1.0},
		{X: -20, Y: 500, Zoom: 1.5},
		{X: 50, Y: 30, Zoom: 100.0},
	}

	for _, cam := range cams {
		win := window(b, cam)
		if !win.In(b) {
			t.Errorf("window %v escapes bounds %v for camera %+v", win, b, cam)
		}
		if win.Dx() < 1 || win.Dy() < 1 {
			t.Errorf("degenerate window %v for camera %+v", win, cam)
		}
	}
}

func TestWindowShiftsWithoutResizing(t *testing.T) {
	b := image.Rect(0, 0, 100, 60)

	// Zoom 2 gives a 50x30 window. A center too close to an edge
	// shifts the window back inside; it never shrinks.
	left := window(b, CameraState{X: 10, Y: 30, Zoom: 2.0})
	if left.Min.X != 0 || left.Dx() != 50 || left.Dy() != 30 {
		t.Errorf("expected 50x30 window at left edge, got %v", left)
	}

	right := window(b, CameraState{X: 95, Y: 30, Zoom: 2.0})
	if right.Max.X != 100 || right.Dx() != 50 {
		t.Errorf("expected 50x30 window at right edge, got %v", right)
	}
}

func TestWrapFullRevolutionRepeats(t *testing.T) {
	src := halvesImage(64, 32)

	camAt := func(tv float64) CameraState {
		return CameraState{X: 64*tv + 32, Y: 16, Zoom: 1.0, WrapX: true}
	}

	first := Render(src, 64, 32, camAt(0))
	last := Render(src, 64, 32, camAt(1))
	if !bytes.Equal(first.Pix, last.Pix) {
		t.Error("sweep start and end should sample the same window of the tiled image")
	}
}

func TestWrapHalfwaySwapsHalves(t *testing.T) {
	src := halvesImage(64, 32)

	mid := Render(src, 64, 32, CameraState{X: 64*0.5 + 32, Y: 16, Zoom: 1.0, WrapX: true})

	// Halfway through the sweep the window straddles the seam: blue
	// half first, then red. Sample well away from the seam.
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	if got := mid.RGBAAt(16, 16); got != blue {
		t.Errorf("left quarter should be blue, got %v", got)
	}
	if got := mid.RGBAAt(48, 16); got != red {
		t.Errorf("right quarter should be red, got %v", got)
	}
}
