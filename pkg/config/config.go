// Package config loads run settings from YAML and validates them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-bowtie/pkg/sampler"
)

// Output formats a run can produce. dot, svg and json are written natively;
// png and pdf need Graphviz.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Config is the full run configuration.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Upload   UploadConfig   `yaml:"upload"`
	Log      LogConfig      `yaml:"log"`
}

// SamplingConfig mirrors sampler.Options.
type SamplingConfig struct {
	Draws   int   `yaml:"draws" validate:"gte=1,lte=10000000"`
	Chains  int   `yaml:"chains" validate:"gte=1,lte=256"`
	Seed    int64 `yaml:"seed"`
	Workers int   `yaml:"workers" validate:"gte=0,lte=1024"`
}

// OutputConfig says where and how diagrams and reports are written.
type OutputConfig struct {
	Dir      string   `yaml:"dir" validate:"required"`
	Formats  []string `yaml:"formats" validate:"min=1,dive,oneof=dot svg json png pdf"`
	Graphviz string   `yaml:"graphviz"`
	Layout   string   `yaml:"layout" validate:"omitempty,oneof=layered circular force"`
	Archive  bool     `yaml:"archive"`
	Model    bool     `yaml:"model"`
}

// MetricsConfig enables a Prometheus textfile dump after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// UploadConfig lists artifact destinations. Dir copies each run's files to a
// second local directory, such as a shared mount.
type UploadConfig struct {
	Dir string    `yaml:"dir"`
	S3  *S3Config `yaml:"s3"`
}

// S3Config is an S3 (or S3-compatible) bucket destination.
type S3Config struct {
	Bucket       string `yaml:"bucket" validate:"required"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region" validate:"required"`
	Endpoint     string `yaml:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the settings the drivers use: 2000 draws from seed 1000,
// DOT and SVG written to ./output.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Draws:  sampler.DefaultDraws,
			Chains: sampler.DefaultChains,
			Seed:   sampler.DefaultSeed,
		},
		Output: OutputConfig{
			Dir:      "output",
			Formats:  []string{FormatDOT, FormatSVG},
			Graphviz: "dot",
			Layout:   "layered",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field tags, then the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}

	return newRules("config").
		oneOf("log.level", strings.ToLower(c.Log.Level), "", "debug", "info", "warn", "warning", "error").
		when(c.needsGraphviz(), func(r *rules) {
			r.require("output.graphviz", c.Output.Graphviz)
		}).
		when(c.Upload.Dir != "", func(r *rules) {
			r.check("upload.dir", func() error {
				if filepath.Clean(c.Upload.Dir) == filepath.Clean(c.Output.Dir) {
					return fmt.Errorf("%q is the output directory", c.Upload.Dir)
				}
				return nil
			})
		}).
		check("output.formats", func() error {
			seen := make(map[string]bool)
			for _, f := range c.Output.Formats {
				if seen[f] {
					return fmt.Errorf("format %q listed twice", f)
				}
				seen[f] = true
			}
			return nil
		}).
		err()
}

// SamplerOptions converts the sampling section.
func (c *Config) SamplerOptions() sampler.Options {
	return sampler.Options{
		Draws:   c.Sampling.Draws,
		Chains:  c.Sampling.Chains,
		Seed:    c.Sampling.Seed,
		Workers: c.Sampling.Workers,
	}
}

// HasFormat reports whether format is requested.
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Output.Formats {
		if f == format {
			return true
		}
	}
	return false
}

func (c *Config) needsGraphviz() bool {
	return c.HasFormat(FormatPNG) || c.HasFormat(FormatPDF)
}
