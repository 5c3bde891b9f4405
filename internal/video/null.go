package video

import (
	"context"
	"image"
)

// NullFactory opens sinks that count frames and discard them. Used for
// dry runs and benchmarks, where only rendering speed matters.
type NullFactory struct{}

func (NullFactory) Open(ctx context.Context, path string, width, height, fps int) (Sink, error) {
	return &nullSink{}, nil
}

type nullSink struct {
	frames int
}

func (s *nullSink) Append(frame *image.RGBA) error {
	s.frames++
	return nil
}

func (s *nullSink) Close() error {
	return nil
}
