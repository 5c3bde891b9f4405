package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/img2video/internal/config"
	"github.com/ivlev/img2video/internal/effects"
	"github.com/ivlev/img2video/internal/engine"
	"github.com/ivlev/img2video/internal/source"
	"github.com/ivlev/img2video/internal/system"
	"github.com/ivlev/img2video/internal/video"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "Путь к YAML-конфигурации")
	inputPtr := flag.String("input", "", "Папка с изображениями, одно изображение или PDF")
	outputPtr := flag.String("output", "", "Папка для готовых клипов")
	motionPtr := flag.String("motion", "", "Эффект движения: none, subtle, ken-burns, zoom-in, zoom-out, 360-pan")
	qualityPtr := flag.String("quality", "", "Пресет качества: 4k, 1080p, 720p, 480p, 360p")
	fpsPtr := flag.Int("fps", 0, "Кадров в секунду")
	durationPtr := flag.Float64("duration", 0, "Длительность одного клипа (сек)")
	dpiPtr := flag.Int("dpi", 0, "DPI рендеринга PDF-страниц")
	encoderPtr := flag.String("encoder", "", "Видеоэнкодер (по умолчанию подбирается автоматически)")
	encQualityPtr := flag.Int("encoder-quality", 0, "Качество энкодера (0 - авто, x264: CRF, VideoToolbox: битрейт = Q*100кбит/с)")
	dryRunPtr := flag.Bool("dry-run", false, "Рендер без записи файлов (замер скорости)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")
	listPtr := flag.Bool("list-effects", false, "Показать доступные эффекты и выйти")
	flag.Parse()

	if *listPtr {
		for _, k := range effects.Catalog() {
			fmt.Printf("  %-10s %s\n", k.Kind, k.Label)
		}
		return
	}

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		cfg = loaded
	}
	cfg.FromEnv()

	// Флаги имеют приоритет над файлом и окружением
	if *inputPtr != "" {
		cfg.InputDir = *inputPtr
	}
	if *outputPtr != "" {
		cfg.OutputDir = *outputPtr
	}
	if *motionPtr != "" {
		cfg.Motion = *motionPtr
	}
	if *qualityPtr != "" {
		cfg.Quality = *qualityPtr
	}
	if *fpsPtr > 0 {
		cfg.FPS = *fpsPtr
	}
	if *durationPtr > 0 {
		cfg.Duration = *durationPtr
	}
	if *dpiPtr > 0 {
		cfg.DPI = *dpiPtr
	}
	if *encoderPtr != "" {
		cfg.Encoder = *encoderPtr
	}
	if *encQualityPtr > 0 {
		cfg.EncoderQuality = *encQualityPtr
	}

	width, height, err := cfg.Canvas()
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	if _, err := effects.Resolve(cfg.Motion); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	src, err := source.Open(cfg.InputDir, cfg.DPI)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	if src.Count() == 0 {
		log.Fatalf("[-] Ошибка: в %s нет изображений", cfg.InputDir)
	}

	encoderName := cfg.Encoder
	if encoderName == "" {
		encoderName = system.BestEncoder()
	}
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}
	encQuality := cfg.EncoderQuality
	if encQuality == 0 {
		encQuality = system.DefaultEncoderQuality(encoderName)
	}

	var sinks video.Factory = &video.FFmpegFactory{Encoder: encoderName, Quality: encQuality}
	if *dryRunPtr {
		fmt.Println("[*] Режим dry-run: файлы не записываются")
		sinks = video.NullFactory{}
	}

	fmt.Println("--- [IMG2VIDEO] ---")
	fmt.Printf("[*] Источник: %s | Изображений: %d\n", cfg.InputDir, src.Count())
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Эффект: %s | Клип: %.1fs\n",
		width, height, cfg.FPS, cfg.Motion, cfg.Duration)
	fmt.Println("-------------------")

	cliLog := logrus.New()
	cliLog.SetLevel(logrus.WarnLevel)
	runner := engine.NewRunner(sinks, cliLog)

	startTime := time.Now()
	res, err := runner.Run(context.Background(), engine.Request{
		Source:    src,
		Kind:      cfg.Motion,
		Width:     width,
		Height:    height,
		FPS:       cfg.FPS,
		Duration:  cfg.Duration,
		OutputDir: cfg.OutputDir,
		Tag:       cfg.Quality,
	}, func(pct float64) {
		fmt.Printf("\r[>] Прогресс: %5.1f%%", pct)
	})
	fmt.Println()
	if err != nil {
		log.Fatalf("[-] Ошибка конвертации: %v", err)
	}

	for _, out := range res.Outputs {
		fmt.Printf("[>] Готово: %s (%d кадров)\n", out.Path, out.Frames)
	}
	for _, e := range res.Errors {
		fmt.Printf("[!] Пропущено %s: %s\n", e.Image, e.Message)
	}

	if len(res.Outputs) == 0 {
		fmt.Println("[-] Ни одного клипа не создано")
		os.Exit(1)
	}

	totalTime := time.Since(startTime)
	fmt.Printf("[+++] Успех! Клипов: %d | Ошибок: %d | Время: %.2fs\n",
		len(res.Outputs), len(res.Errors), totalTime.Seconds())

	if *statsPtr {
		totalFrames := 0
		for _, out := range res.Outputs {
			totalFrames += out.Frames
		}
		report := fmt.Sprintf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Total Time: %.2fs\n"+
				"Clips: %d\n"+
				"Frames: %d\n"+
				"Effective FPS: %.2f\n"+
				"----------------------------\n",
			totalTime.Seconds(), len(res.Outputs), totalFrames, float64(totalFrames)/totalTime.Seconds(),
		)
		fmt.Print(report)

		// Логирование в файл
		logEntry := fmt.Sprintf("[%s] Input: %s | Images: %d | Clips: %d | Frames: %d | Total: %.2fs | FPS: %.2f\n",
			time.Now().Format("2006-01-02 15:04:05"),
			cfg.InputDir,
			src.Count(),
			len(res.Outputs),
			totalFrames,
			totalTime.Seconds(),
			float64(totalFrames)/totalTime.Seconds(),
		)

		f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			f.WriteString(logEntry)
			f.Close()
		} else {
			fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
		}
	}
}
