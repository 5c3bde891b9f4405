package config

import "fmt"

type Config struct {
	InputDir       string  `yaml:"input_dir"`
	OutputDir      string  `yaml:"output_dir"`
	Motion         string  `yaml:"motion"`
	Quality        string  `yaml:"quality"`
	FPS            int     `yaml:"fps"`
	Duration       float64 `yaml:"duration"`
	DPI            int     `yaml:"dpi"`
	Encoder        string  `yaml:"encoder"`
	EncoderQuality int     `yaml:"encoder_quality"`
	MaxJobs        int     `yaml:"max_jobs"`
	Listen         string  `yaml:"listen"`
}

// Default returns the configuration used when no file, environment or
// flag overrides anything.
func Default() *Config {
	return &Config{
		InputDir:  "input",
		OutputDir: "output",
		Motion:    "subtle",
		Quality:   "1080p",
		FPS:       10,
		Duration:  5.0,
		DPI:       300,
		Listen:    ":8080",
	}
}

// Preset is a named output resolution.
type Preset struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

var presets = map[string]Preset{
	"4k":    {Width: 3840, Height: 2160},
	"1080p": {Width: 1920, Height: 1080},
	"720p":  {Width: 1280, Height: 720},
	"480p":  {Width: 854, Height: 480},
	"360p":  {Width: 640, Height: 360},
}

var presetOrder = []string{"4k", "1080p", "720p", "480p", "360p"}

// ResolvePreset maps a quality preset name to its resolution.
func ResolvePreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown quality preset: %s", name)
	}
	return p, nil
}

// PresetNames lists the quality presets from largest to smallest.
func PresetNames() []string {
	names := make([]string, len(presetOrder))
	copy(names, presetOrder)
	return names
}

// Canvas returns the output resolution selected by c.Quality.
func (c *Config) Canvas() (int, int, error) {
	p, err := ResolvePreset(c.Quality)
	if err != nil {
		return 0, 0, err
	}
	return p.Width, p.Height, nil
}
