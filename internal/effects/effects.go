package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/ivlev/img2video/internal/renderer"
)

// Motion kind tokens accepted by Resolve.
const (
	KindNone     = "none"
	KindSubtle   = "subtle"
	KindKenBurns = "ken-burns"
	KindZoomIn   = "zoom-in"
	KindZoomOut  = "zoom-out"
	KindPan360   = "360-pan"
)

var ErrUnknownKind = errors.New("unknown motion kind")

// Effect maps clip progress to a camera state over a source image.
// Implementations are stateless and safe for concurrent use; progress
// values outside [0,1] are clamped, never rejected.
type Effect interface {
	Name() string
	CameraAt(t float64, srcW, srcH int) renderer.CameraState
}

// Resolve returns the effect for a motion kind token.
func Resolve(kind string) (Effect, error) {
	switch kind {
	case KindNone:
		return noneEffect{}, nil
	case KindSubtle:
		return subtleEffect{}, nil
	case KindKenBurns:
		return kenBurnsEffect{}, nil
	case KindZoomIn:
		return zoomEffect{name: KindZoomIn, from: 1.0, to: 2.0}, nil
	case KindZoomOut:
		return zoomEffect{name: KindZoomOut, from: 1.2, to: 1.0}, nil
	case KindPan360:
		return pan360Effect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// KindInfo describes one motion kind for catalog listings.
type KindInfo struct {
	Kind  string
	Label string
}

// Catalog lists every supported motion kind with its display label, in
// a stable order.
func Catalog() []KindInfo {
	return []KindInfo{
		{Kind: KindNone, Label: "None (Static)"},
		{Kind: KindSubtle, Label: "Subtle (Gentle Zoom + Pan)"},
		{Kind: KindKenBurns, Label: "Ken Burns (Classic Documentary)"},
		{Kind: KindZoomIn, Label: "Zoom In (Dramatic Push)"},
		{Kind: KindZoomOut, Label: "Zoom Out (Reveal)"},
		{Kind: KindPan360, Label: "360° Pan (Panoramic Sweep)"},
	}
}

// noneEffect keeps the camera fixed on the full frame.
type noneEffect struct{}

func (noneEffect) Name() string { return KindNone }

func (noneEffect) CameraAt(t float64, srcW, srcH int) renderer.CameraState {
	return renderer.CameraState{X: float64(srcW) / 2, Y: float64(srcH) / 2, Zoom: 1.0}
}

// subtleEffect zooms in gently while the camera circles the center.
type subtleEffect struct{}

func (subtleEffect) Name() string { return KindSubtle }

func (subtleEffect) CameraAt(t float64, srcW, srcH int) renderer.CameraState {
	t = clamp01(t)
	r := 0.03 * math.Min(float64(srcW), float64(srcH))
	return renderer.CameraState{
		X:    float64(srcW)/2 + r*math.Sin(2*math.Pi*t),
		Y:    float64(srcH)/2 + r*math.Cos(2*math.Pi*t),
		Zoom: lerp(1.0, 1.15, t),
	}
}

// kenBurnsEffect is the classic documentary move: a progressive push
// in with a wide sinusoidal drift across the frame.
type kenBurnsEffect struct{}

func (kenBurnsEffect) Name() string { return KindKenBurns }

func (kenBurnsEffect) CameraAt(t float64, srcW, srcH int) renderer.CameraState {
	t = clamp01(t)
	m := math.Min(float64(srcW), float64(srcH))
	return renderer.CameraState{
		X:    float64(srcW)/2 + 0.06*m*math.Sin(math.Pi*t),
		Y:    float64(srcH)/2 + 0.05*m*math.Cos(math.Pi*t),
		Zoom: lerp(1.0, 1.30, t),
	}
}

// zoomEffect pushes straight in or out between two zoom levels,
// holding the camera on the center.
type zoomEffect struct {
	name     string
	from, to float64
}

func (e zoomEffect) Name() string { return e.name }

func (e zoomEffect) CameraAt(t float64, srcW, srcH int) renderer.CameraState {
	return renderer.CameraState{
		X:    float64(srcW) / 2,
		Y:    float64(srcH) / 2,
		Zoom: lerp(e.from, e.to, clamp01(t)),
	}
}

// pan360Effect sweeps the window across the horizontally tiled source,
// one full revolution per clip.
type pan360Effect struct{}

func (pan360Effect) Name() string { return KindPan360 }

func (pan360Effect) CameraAt(t float64, srcW, srcH int) renderer.CameraState {
	t = clamp01(t)
	return renderer.CameraState{
		X:     float64(srcW)*t + float64(srcW)/2,
		Y:     float64(srcH) / 2,
		Zoom:  1.0,
		WrapX: true,
	}
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
