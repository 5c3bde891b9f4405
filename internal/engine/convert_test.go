package engine

import (
	"bytes"
	"errors"
	"image"
	"testing"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/ivlev/img2video/internal/effects"
	"github.com/ivlev/img2video/internal/source"
	"github.com/ivlev/img2video/internal/video"
)

// captureSink keeps a copy of every appended frame. Copies are
// required because the engine reuses one canvas buffer for the whole
// clip.
type captureSink struct {
	frames [][]byte
	failAt int // append index to fail on, -1 to disable
	closed bool
}

func newCaptureSink() *captureSink {
	return &captureSink{failAt: -1}
}

func (s *captureSink) Append(frame *image.RGBA) error {
	if s.failAt >= 0 && len(s.frames) == s.failAt {
		return errors.New("disk full")
	}
	pix := make([]byte, len(frame.Pix))
	copy(pix, frame.Pix)
	s.frames = append(s.frames, pix)
	return nil
}

func (s *captureSink) Close() error {
	s.closed = true
	return nil
}

// testImage renders a QR code as the source: a deterministic pattern
// with enough contrast that camera motion visibly changes the frames.
func testImage(t *testing.T) image.Image {
	t.Helper()
	qr, err := qrcode.New("img2video test pattern", qrcode.Medium)
	if err != nil {
		t.Fatal(err)
	}
	return qr.Image(96)
}

func mustEffect(t *testing.T, kind string) effects.Effect {
	t.Helper()
	eff, err := effects.Resolve(kind)
	if err != nil {
		t.Fatal(err)
	}
	return eff
}

func TestConvertImageFrameCount(t *testing.T) {
	sink := newCaptureSink()
	params := ClipParams{Width: 160, Height: 90, FPS: 10, Duration: 2.0}

	var done []int
	frames, err := ConvertImage(testImage(t), mustEffect(t, "subtle"), params, sink, func(d, total int) {
		if total != 20 {
			t.Errorf("expected total 20, got %d", total)
		}
		done = append(done, d)
	})
	if err != nil {
		t.Fatal(err)
	}

	if frames != 20 {
		t.Errorf("expected 20 frames, got %d", frames)
	}
	if len(sink.frames) != 20 {
		t.Fatalf("expected 20 appended frames, got %d", len(sink.frames))
	}
	for i, pix := range sink.frames {
		if len(pix) != 160*90*4 {
			t.Fatalf("frame %d has %d bytes, expected %d", i, len(pix), 160*90*4)
		}
	}

	if len(done) != 20 || done[0] != 1 || done[19] != 20 {
		t.Errorf("unexpected progress sequence: %v", done)
	}
	for i := 1; i < len(done); i++ {
		if done[i] <= done[i-1] {
			t.Fatalf("progress went backwards at step %d: %v", i, done)
		}
	}
}

func TestConvertImageRejectsNilSource(t *testing.T) {
	sink := newCaptureSink()

	frames, err := ConvertImage(nil, mustEffect(t, "none"), ClipParams{Width: 64, Height: 48, FPS: 10, Duration: 1}, sink, nil)
	if !errors.Is(err, source.ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
	if frames != 0 || len(sink.frames) != 0 {
		t.Errorf("expected no frames written, got %d", len(sink.frames))
	}
}

func TestConvertImageRejectsEmptySource(t *testing.T) {
	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))

	_, err := ConvertImage(empty, mustEffect(t, "none"), ClipParams{Width: 64, Height: 48, FPS: 10, Duration: 1}, newCaptureSink(), nil)
	if !errors.Is(err, source.ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

func TestConvertImageRejectsBadParams(t *testing.T) {
	img := testImage(t)

	_, err := ConvertImage(img, mustEffect(t, "none"), ClipParams{Width: 0, Height: 48, FPS: 10, Duration: 1}, newCaptureSink(), nil)
	if !errors.Is(err, effects.ErrInvalidParameter) {
		t.Errorf("zero width: expected ErrInvalidParameter, got %v", err)
	}

	_, err = ConvertImage(img, mustEffect(t, "none"), ClipParams{Width: 64, Height: 48, FPS: 10, Duration: 0}, newCaptureSink(), nil)
	if !errors.Is(err, effects.ErrInvalidParameter) {
		t.Errorf("zero duration: expected ErrInvalidParameter, got %v", err)
	}
}

func TestConvertImageStopsOnSinkFailure(t *testing.T) {
	sink := newCaptureSink()
	sink.failAt = 2

	frames, err := ConvertImage(testImage(t), mustEffect(t, "zoom-in"), ClipParams{Width: 64, Height: 48, FPS: 10, Duration: 1}, sink, nil)
	if err == nil {
		t.Fatal("expected an error from the failing sink")
	}

	var we *video.WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected a WriteError, got %T: %v", err, err)
	}
	if we.Frame != 2 {
		t.Errorf("expected failure at frame 2, got %d", we.Frame)
	}
	if frames != 2 || len(sink.frames) != 2 {
		t.Errorf("expected 2 frames before the failure, got %d", len(sink.frames))
	}
}

func TestConvertImageAnimatesFrames(t *testing.T) {
	params := ClipParams{Width: 96, Height: 96, FPS: 10, Duration: 1}
	img := testImage(t)

	moving := newCaptureSink()
	if _, err := ConvertImage(img, mustEffect(t, "ken-burns"), params, moving, nil); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(moving.frames[0], moving.frames[len(moving.frames)-1]) {
		t.Error("expected ken-burns to change the frame over time")
	}

	still := newCaptureSink()
	if _, err := ConvertImage(img, mustEffect(t, "none"), params, still, nil); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(still.frames[0], still.frames[len(still.frames)-1]) {
		t.Error("expected identical frames without motion")
	}
}
