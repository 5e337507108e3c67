package main

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"

	zarr "github.com/datatrellis/zarr-serve"
)

// Config is the server configuration, read from a TOML file.
type Config struct {
	Listen  string         `toml:"listen"`
	Codec   zarr.CodecSpec `toml:"codec"`
	Logging LoggingConfig  `toml:"logging"`
}

// LoggingConfig mirrors the logger package's configuration shape.
type LoggingConfig struct {
	Directory string            `toml:"directory"`
	File      string            `toml:"file"`
	Size      int               `toml:"size"`
	Count     int               `toml:"count"`
	Console   bool              `toml:"console"`
	Levels    map[string]string `toml:"levels"`
}

func defaultConfig() *Config {
	return &Config{
		Listen: ":8118",
		Codec:  zarr.DefaultCodecSpec,
		Logging: LoggingConfig{
			Directory: ".",
			File:      "zarrserved.log",
			Size:      1048576,
			Count:     10,
			Console:   true,
			Levels:    map[string]string{"DEFAULT": "info"},
		},
	}
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
