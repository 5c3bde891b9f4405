package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// FromEnv overrides fields from IMG2VIDEO_* environment variables.
// Unset and malformed values leave the current field untouched.
func (c *Config) FromEnv() {
	if v, ok := os.LookupEnv("IMG2VIDEO_INPUT_DIR"); ok {
		c.InputDir = v
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_MOTION"); ok {
		c.Motion = v
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_QUALITY"); ok {
		c.Quality = v
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_FPS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.FPS = n
		}
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_DURATION"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Duration = f
		}
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_DPI"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.DPI = n
		}
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_ENCODER"); ok {
		c.Encoder = v
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_MAX_JOBS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxJobs = n
		}
	}
	if v, ok := os.LookupEnv("IMG2VIDEO_LISTEN"); ok {
		c.Listen = v
	}
}
