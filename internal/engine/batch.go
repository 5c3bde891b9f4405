package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/img2video/internal/effects"
	"github.com/ivlev/img2video/internal/source"
	"github.com/ivlev/img2video/internal/video"
)

var ErrEmptyInput = errors.New("empty input set")

// Request describes one batch conversion: every image in Source is
// rendered into its own clip with the same canvas, timing and motion
// kind.
type Request struct {
	Source    source.Source
	Kind      string
	Width     int
	Height    int
	FPS       int
	Duration  float64
	OutputDir string
	// Tag is appended to output file names, typically the quality
	// preset name.
	Tag string
}

// Output describes one finished clip.
type Output struct {
	Path       string    `json:"path"`
	Image      string    `json:"image"`
	Frames     int       `json:"frames"`
	Duration   float64   `json:"duration_seconds"`
	FPS        int       `json:"fps"`
	Resolution string    `json:"resolution"`
	Motion     string    `json:"motion"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// ImageError records a per-image failure inside an otherwise
// successful batch.
type ImageError struct {
	Index   int    `json:"index"`
	Image   string `json:"image"`
	Message string `json:"error"`
}

// Result aggregates a finished batch: outputs and per-image errors,
// each in input order.
type Result struct {
	Outputs  []Output     `json:"outputs"`
	Errors   []ImageError `json:"errors"`
	Started  time.Time    `json:"started_at"`
	Finished time.Time    `json:"finished_at"`
}

// Runner converts image batches into clips through a sink factory.
type Runner struct {
	sinks video.Factory
	log   *logrus.Logger
}

func NewRunner(sinks video.Factory, log *logrus.Logger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{sinks: sinks, log: log}
}

// Run processes every image in the request strictly in source order,
// one at a time. A failure on one image is recorded and the runner
// moves on to the next; the whole run fails only when the input set is
// empty or the request itself is unusable. The progress callback
// receives the overall batch percentage in [0,100].
func (r *Runner) Run(ctx context.Context, req Request, progress func(pct float64)) (*Result, error) {
	count := req.Source.Count()
	if count == 0 {
		return nil, ErrEmptyInput
	}
	eff, err := effects.Resolve(req.Kind)
	if err != nil {
		return nil, err
	}
	if req.Duration <= 0 || req.FPS <= 0 {
		return nil, fmt.Errorf("%w: duration %.3f, fps %d", effects.ErrInvalidParameter, req.Duration, req.FPS)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", effects.ErrInvalidParameter, req.Width, req.Height)
	}
	if req.OutputDir != "" {
		if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
			return nil, err
		}
	}

	report := func(done int, frac float64) {
		if progress != nil {
			progress((float64(done) + frac) / float64(count) * 100)
		}
	}

	clip := ClipParams{Width: req.Width, Height: req.Height, FPS: req.FPS, Duration: req.Duration}
	res := &Result{Started: time.Now()}

	for i := 0; i < count; i++ {
		name := req.Source.Name(i)
		out, err := r.convertOne(ctx, i, name, eff, clip, req, func(done, total int) {
			report(i, float64(done)/float64(total))
		})
		if err != nil {
			r.log.WithError(err).WithField("image", name).Warn("clip failed")
			res.Errors = append(res.Errors, ImageError{Index: i, Image: name, Message: err.Error()})
		} else {
			r.log.WithFields(logrus.Fields{
				"image":  name,
				"path":   out.Path,
				"frames": out.Frames,
			}).Info("clip ready")
			res.Outputs = append(res.Outputs, out)
		}
		report(i+1, 0)
	}

	res.Finished = time.Now()
	return res, nil
}

func (r *Runner) convertOne(ctx context.Context, index int, name string, eff effects.Effect, clip ClipParams, req Request, progress ProgressFunc) (Output, error) {
	img, err := req.Source.Load(index)
	if err != nil {
		return Output{}, err
	}

	outPath := filepath.Join(req.OutputDir, outputName(name, req.Kind, req.Tag))
	sink, err := r.sinks.Open(ctx, outPath, req.Width, req.Height, req.FPS)
	if err != nil {
		return Output{}, err
	}

	frames, err := ConvertImage(img, eff, clip, sink, progress)
	if err != nil {
		sink.Close()
		os.Remove(outPath)
		return Output{}, err
	}
	if err := sink.Close(); err != nil {
		os.Remove(outPath)
		return Output{}, err
	}

	out := Output{
		Path:       outPath,
		Image:      name,
		Frames:     frames,
		Duration:   req.Duration,
		FPS:        req.FPS,
		Resolution: fmt.Sprintf("%dx%d", req.Width, req.Height),
		Motion:     req.Kind,
		CreatedAt:  time.Now(),
	}
	if fi, err := os.Stat(outPath); err == nil {
		out.SizeBytes = fi.Size()
	}
	return out, nil
}

// outputName builds the clip file name for one source image.
func outputName(image, kind, tag string) string {
	base := strings.ReplaceAll(image, " ", "_")
	if tag == "" {
		return fmt.Sprintf("%s_motion_%s.mp4", base, kind)
	}
	return fmt.Sprintf("%s_motion_%s_%s.mp4", base, kind, tag)
}
