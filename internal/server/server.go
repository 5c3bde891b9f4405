package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/ivlev/img2video/internal/config"
	"github.com/ivlev/img2video/internal/effects"
	"github.com/ivlev/img2video/internal/engine"
	"github.com/ivlev/img2video/internal/jobs"
	"github.com/ivlev/img2video/internal/source"
	"github.com/ivlev/img2video/internal/system"
)

// Server exposes batch conversion over HTTP: submit a job, poll its
// status, list the available effects and quality presets.
type Server struct {
	cfg  *config.Config
	jobs *jobs.Registry
	log  *logrus.Logger
}

func New(cfg *config.Config, registry *jobs.Registry, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{cfg: cfg, jobs: registry, log: log}
}

// Register attaches the routes to an Echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/batch-start", s.batchStart)
	e.GET("/status/:id", s.jobStatus)
	e.GET("/api/jobs", s.listJobs)
	e.GET("/api/effects", s.listEffects)
	e.GET("/api/qualities", s.listQualities)
	e.GET("/health", s.health)
}

type batchRequest struct {
	InputDir  string  `json:"input_dir"`
	OutputDir string  `json:"output_dir"`
	Motion    string  `json:"motion"`
	Quality   string  `json:"quality"`
	FPS       int     `json:"fps"`
	Duration  float64 `json:"duration"`
}

// batchStart validates the request, builds the input source and
// submits a background job. Validation failures are rejected here with
// 400; failures inside the running batch surface through job status.
func (s *Server) batchStart(c echo.Context) error {
	req := batchRequest{
		InputDir:  s.cfg.InputDir,
		OutputDir: s.cfg.OutputDir,
		Motion:    s.cfg.Motion,
		Quality:   s.cfg.Quality,
		FPS:       s.cfg.FPS,
		Duration:  s.cfg.Duration,
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "malformed request body"})
	}

	if _, err := effects.Resolve(req.Motion); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	preset, err := config.ResolvePreset(req.Quality)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if req.FPS <= 0 || req.Duration <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "fps and duration must be positive"})
	}

	src, err := source.Open(req.InputDir, s.cfg.DPI)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("cannot open input %s: %v", req.InputDir, err)})
	}
	if src.Count() == 0 {
		src.Close()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("no images found in %s", req.InputDir)})
	}

	id := s.jobs.Submit(engine.Request{
		Source:    src,
		Kind:      req.Motion,
		Width:     preset.Width,
		Height:    preset.Height,
		FPS:       req.FPS,
		Duration:  req.Duration,
		OutputDir: req.OutputDir,
		Tag:       req.Quality,
	})

	return c.JSON(http.StatusOK, map[string]string{"job_id": id})
}

func (s *Server) jobStatus(c echo.Context) error {
	snap, err := s.jobs.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrUnknownJob) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) listJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, s.jobs.List())
}

func (s *Server) listEffects(c echo.Context) error {
	catalog := map[string]string{}
	for _, k := range effects.Catalog() {
		catalog[k.Kind] = k.Label
	}
	return c.JSON(http.StatusOK, catalog)
}

func (s *Server) listQualities(c echo.Context) error {
	qualities := map[string]string{}
	for _, name := range config.PresetNames() {
		p, _ := config.ResolvePreset(name)
		qualities[name] = fmt.Sprintf("%dx%d", p.Width, p.Height)
	}
	return c.JSON(http.StatusOK, qualities)
}

func (s *Server) health(c echo.Context) error {
	payload := map[string]any{"status": "ok"}
	if res, err := system.Probe(); err == nil {
		payload["cpu_count"] = res.CPUCount
		payload["memory_used_percent"] = res.MemoryUsedPercent
	}
	return c.JSON(http.StatusOK, payload)
}
