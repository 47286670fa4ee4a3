// Package config loads the collector settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all collector settings.
type Config struct {
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	Development bool   `yaml:"development"`
	// ArchiveDir is where save and load dialogs start.
	ArchiveDir string `yaml:"archive_dir"`
	Window     Window `yaml:"window"`
	Pen        Pen    `yaml:"pen"`
	Share      Share  `yaml:"share"`
}

// Window is the initial collector window size.
type Window struct {
	Width  float32 `yaml:"width" validate:"gte=200"`
	Height float32 `yaml:"height" validate:"gte=200"`
}

// Pen is how strokes are drawn on screen. It does not affect stored data.
type Pen struct {
	Width float32 `yaml:"width" validate:"gt=0,lte=50"`
	Color string  `yaml:"color" validate:"hexcolor"`
}

// Share configures archive sharing on the local network.
type Share struct {
	Port int    `yaml:"port" validate:"gte=1,lte=65535"`
	Name string `yaml:"name" validate:"omitempty,max=63"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Window:   Window{Width: 1024, Height: 768},
		Pen:      Pen{Width: 2, Color: "#000000"},
		Share:    Share{Port: 8888},
	}
}

// DefaultPath is the config file consulted when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "srcollect", "config.yaml")
}

// Load reads and validates the file at path. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report yaml names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// RGBA parses the pen color. Invalid colors fall back to black.
func (p Pen) RGBA() color.NRGBA {
	black := color.NRGBA{A: 0xff}
	hex := strings.TrimPrefix(p.Color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return black
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return black
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
