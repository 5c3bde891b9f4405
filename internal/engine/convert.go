package engine

import (
	"fmt"
	"image"

	"github.com/ivlev/img2video/internal/effects"
	"github.com/ivlev/img2video/internal/renderer"
	"github.com/ivlev/img2video/internal/source"
	"github.com/ivlev/img2video/internal/system"
	"github.com/ivlev/img2video/internal/video"
)

// ClipParams describes the canvas and timing of one output clip.
type ClipParams struct {
	Width  int
	Height int
	FPS    int
	// Duration is the clip length in seconds.
	Duration float64
}

// ProgressFunc receives the number of frames written so far and the
// total frame count of the clip.
type ProgressFunc func(done, total int)

// ConvertImage renders one source image into a motion-animated frame
// sequence and appends the frames to the sink in schedule order. It
// returns the number of frames written. A sink failure stops the clip
// immediately; whatever the sink received so far must be discarded by
// the caller.
func ConvertImage(img image.Image, eff effects.Effect, p ClipParams, sink video.Sink, progress ProgressFunc) (int, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return 0, fmt.Errorf("%w: canvas %dx%d", effects.ErrInvalidParameter, p.Width, p.Height)
	}
	if img == nil {
		return 0, fmt.Errorf("%w: nil source", source.ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 {
		return 0, fmt.Errorf("%w: source has no pixels", source.ErrInvalidImage)
	}

	schedule, err := effects.Schedule(p.Duration, p.FPS)
	if err != nil {
		return 0, err
	}

	frame := system.GetFrame(image.Rect(0, 0, p.Width, p.Height))
	defer system.PutFrame(frame)

	for i, t := range schedule {
		renderer.RenderInto(frame, img, eff.CameraAt(t, b.Dx(), b.Dy()))
		if err := sink.Append(frame); err != nil {
			return i, &video.WriteError{Frame: i, Err: err}
		}
		if progress != nil {
			progress(i+1, len(schedule))
		}
	}

	return len(schedule), nil
}
