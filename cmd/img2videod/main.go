package main

import (
	"flag"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ivlev/img2video/internal/config"
	"github.com/ivlev/img2video/internal/engine"
	"github.com/ivlev/img2video/internal/jobs"
	"github.com/ivlev/img2video/internal/server"
	"github.com/ivlev/img2video/internal/system"
	"github.com/ivlev/img2video/internal/video"
)

func main() {
	_ = godotenv.Load()
	initLogger()

	configPtr := flag.String("config", "", "Путь к YAML-конфигурации")
	listenPtr := flag.String("listen", "", "Адрес HTTP-сервера (например, :8080)")
	flag.Parse()

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("cannot load config %s: %v", *configPtr, err)
		}
		cfg = loaded
	}
	cfg.FromEnv()
	if *listenPtr != "" {
		cfg.Listen = *listenPtr
	}

	if _, _, err := cfg.Canvas(); err != nil {
		log.Fatalf("bad config: %v", err)
	}
	if cfg.Encoder == "" {
		cfg.Encoder = system.BestEncoder()
	}
	if cfg.EncoderQuality == 0 {
		cfg.EncoderQuality = system.DefaultEncoderQuality(cfg.Encoder)
	}
	log.Infof("encoder: %s (quality %d)", cfg.Encoder, cfg.EncoderQuality)

	maxJobs := cfg.MaxJobs
	if maxJobs <= 0 {
		res, err := system.Probe()
		if err != nil {
			log.Warnf("resource probe failed: %v", err)
			maxJobs = 2
		} else {
			maxJobs = system.SuggestWorkers(res)
			log.Infof("probed %d CPUs, %d MB available", res.CPUCount, res.MemoryAvailable>>20)
		}
	}
	log.Infof("max concurrent jobs: %d", maxJobs)

	runner := engine.NewRunner(&video.FFmpegFactory{Encoder: cfg.Encoder, Quality: cfg.EncoderQuality}, log)
	registry := jobs.NewRegistry(runner, int64(maxJobs), log)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := server.New(cfg, registry, log)
	srv.Register(e)

	// Start server
	e.Logger.Fatal(e.Start(cfg.Listen))
}
