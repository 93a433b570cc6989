// Package config loads pipeline settings from an optional YAML file,
// layering file values over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/linuxmatters/jivepitch/internal/pitch"
	"github.com/linuxmatters/jivepitch/internal/synth"
)

// Estimator names accepted by Pitch.Estimator.
const (
	EstimatorAutocorr = "autocorr"
	EstimatorYIN      = "yin"
	EstimatorExternal = "external"
)

var estimatorNames = []string{EstimatorAutocorr, EstimatorYIN, EstimatorExternal}

// Config carries every tunable the pipeline reads.
type Config struct {
	Paths Paths `yaml:"paths"`
	Tools Tools `yaml:"tools"`
	Pitch Pitch `yaml:"pitch"`
	Synth Synth `yaml:"synth"`
}

// Paths anchors the on-disk layout: model weights, rendered takes, song
// inputs and scratch space.
type Paths struct {
	ModelsRoot string `yaml:"models_root"`
	OutputRoot string `yaml:"output_root"`
	InputRoot  string `yaml:"input_root"`
	ScratchDir string `yaml:"scratch_dir"`
}

// Tools names the external executables the pipeline shells out to.
type Tools struct {
	FFmpeg       string   `yaml:"ffmpeg"`
	Inferencer   string   `yaml:"inferencer"`
	Analyzer     string   `yaml:"analyzer"`
	AnalyzerArgs []string `yaml:"analyzer_args"`
}

// Pitch selects the estimator and its search band, and sets the offset that
// turns a speaking baseline into a singing target.
type Pitch struct {
	Estimator              string  `yaml:"estimator"`
	SingingOffsetSemitones float64 `yaml:"singing_offset_semitones"`
	FMinHz                 float64 `yaml:"f_min_hz"`
	FMaxHz                 float64 `yaml:"f_max_hz"`
}

// Synth carries the tunables forwarded to the voice-conversion inferencer.
type Synth struct {
	F0Method       string  `yaml:"f0_method"`
	IndexRate      float64 `yaml:"index_rate"`
	CrepeHopLength int     `yaml:"crepe_hop_length"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Paths: Paths{
			ModelsRoot: filepath.Join("data", "models"),
			OutputRoot: filepath.Join("data", "output"),
			InputRoot:  defaultInputRoot(),
		},
		Tools: Tools{
			FFmpeg: "ffmpeg",
		},
		Pitch: Pitch{
			Estimator:              EstimatorAutocorr,
			SingingOffsetSemitones: pitch.DefaultSingingOffset,
			FMinHz:                 pitch.DefaultFMin,
			FMaxHz:                 pitch.DefaultFMax,
		},
		Synth: Synth{
			F0Method:       synth.DefaultF0Method,
			IndexRate:      synth.DefaultIndexRate,
			CrepeHopLength: synth.DefaultCrepeHopLength,
		},
	}
}

// defaultInputRoot prefers the container mount when present; local runs use
// the working directory's input folder.
func defaultInputRoot() string {
	if info, err := os.Stat("/input"); err == nil && info.IsDir() {
		return "/input"
	}
	return "input"
}

// Load reads the YAML file at path over the defaults and validates the
// result. A missing file yields the plain defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if !slices.Contains(estimatorNames, c.Pitch.Estimator) {
		return fmt.Errorf("unknown estimator %q (want autocorr, yin or external)", c.Pitch.Estimator)
	}
	if c.Pitch.Estimator == EstimatorExternal && c.Tools.Analyzer == "" {
		return errors.New("external estimator needs tools.analyzer")
	}
	if math.IsNaN(c.Pitch.SingingOffsetSemitones) || math.IsInf(c.Pitch.SingingOffsetSemitones, 0) {
		return errors.New("singing offset must be finite")
	}
	if c.Pitch.FMinHz <= 0 || c.Pitch.FMaxHz <= c.Pitch.FMinHz {
		return fmt.Errorf("pitch band %g..%g Hz is invalid", c.Pitch.FMinHz, c.Pitch.FMaxHz)
	}
	if c.Synth.F0Method == "" {
		return errors.New("f0_method must be set")
	}
	if c.Synth.IndexRate < 0 || c.Synth.IndexRate > 1 {
		return fmt.Errorf("index_rate %g outside 0..1", c.Synth.IndexRate)
	}
	if c.Synth.CrepeHopLength <= 0 {
		return fmt.Errorf("crepe_hop_length %d must be positive", c.Synth.CrepeHopLength)
	}
	return nil
}
