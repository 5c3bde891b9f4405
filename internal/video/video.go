package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Sink consumes the rendered frames of a single output clip, in append
// order. A frame passed to Append is only valid for the duration of
// the call; sinks must not retain it.
type Sink interface {
	Append(frame *image.RGBA) error
	Close() error
}

// Factory opens a sink per output clip.
type Factory interface {
	Open(ctx context.Context, path string, width, height, fps int) (Sink, error)
}

// WriteError reports a sink write failure together with the index of
// the frame that could not be appended.
type WriteError struct {
	Frame int
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("sink write failed at frame %d: %v", e.Frame, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// FFmpegFactory encodes clips by streaming raw RGBA frames into an
// ffmpeg child process over stdin.
type FFmpegFactory struct {
	Encoder string // H.264 encoder name; empty means libx264
	Quality int    // encoder quality (x264: CRF, VideoToolbox: bitrate = Q*100kbit/s)
}

func (f *FFmpegFactory) Open(ctx context.Context, path string, width, height, fps int) (Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	args := buildFFmpegArgs(path, width, height, fps, f.Encoder, f.Quality)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &ffmpegSink{cmd: cmd, stdin: stdin, out: &out, width: width, height: height}, nil
}

func buildFFmpegArgs(path string, width, height, fps int, encoder string, quality int) []string {
	if encoder == "" {
		encoder = "libx264"
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}

	// Качество в зависимости от энкодера
	switch encoder {
	case "h264_videotoolbox":
		if quality == 0 {
			quality = 75
		}
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		if quality == 0 {
			quality = 28
		}
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		if quality == 0 {
			quality = 23
		}
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	args = append(args, path)
	return args
}

type ffmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    *bytes.Buffer
	width  int
	height int
	closed bool
}

func (s *ffmpegSink) Append(frame *image.RGBA) error {
	b := frame.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame size %dx%d does not match clip size %dx%d", b.Dx(), b.Dy(), s.width, s.height)
	}
	return writeRawRGBA(s.stdin, frame)
}

func (s *ffmpegSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg exit error: %v, output: %s", err, s.out.String())
	}
	return nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	// Проверяем, имеет ли изображение стандартный шаг (stride)
	if img.Stride != bounds.Dx()*4 || bounds.Min.X != 0 || bounds.Min.Y != 0 {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Bounds(), img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}
