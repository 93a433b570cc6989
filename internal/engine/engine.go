package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/linuxmatters/jivepitch/internal/audio"
	"github.com/linuxmatters/jivepitch/internal/model"
	"github.com/linuxmatters/jivepitch/internal/pitch"
)

// Decoder turns an audio file into a mono sample buffer.
type Decoder interface {
	DecodeFile(path string) (audio.Buffer, *audio.Metadata, error)
}

// Converter produces a WAV path for an arbitrary container, plus a cleanup
// that removes any scratch file it created.
type Converter interface {
	ToWAV(ctx context.Context, src string) (path string, cleanup func(), err error)
}

// FileDecoder is the default Decoder over the native WAV reader.
type FileDecoder struct{}

func (FileDecoder) DecodeFile(path string) (audio.Buffer, *audio.Metadata, error) {
	return audio.DecodeFile(path)
}

// Config assembles the engine's collaborators and tunables. Nil
// collaborators are replaced with defaults by New; the offset is taken
// as given.
type Config struct {
	// SingingOffsetSemitones converts the metadata speaking baseline into a
	// singing-register target.
	SingingOffsetSemitones float64

	Estimator pitch.Estimator
	Decoder   Decoder
	Converter Converter
	Logger    *slog.Logger
}

// DefaultConfig pairs the autocorrelation estimator with the standard
// singing offset.
func DefaultConfig() Config {
	return Config{
		SingingOffsetSemitones: pitch.DefaultSingingOffset,
		Estimator:              pitch.NewAutocorr(),
		Decoder:                FileDecoder{},
		Converter:              &audio.Converter{},
		Logger:                 slog.Default(),
	}
}

// Engine resolves the semitone shift for one synthesis request. Every
// invocation is self-contained; engines are safe for reuse across requests.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	if cfg.Estimator == nil {
		cfg.Estimator = pitch.NewAutocorr()
	}
	if cfg.Decoder == nil {
		cfg.Decoder = FileDecoder{}
	}
	if cfg.Converter == nil {
		cfg.Converter = &audio.Converter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{cfg: cfg}
}

// EstimatorName identifies the configured estimator for reports.
func (e *Engine) EstimatorName() string { return e.cfg.Estimator.Name() }

// Request is one resolution invocation. AudioPath must already be resolved
// and fetched; the engine performs no discovery. Metadata is nil when no
// descriptor was found. A non-nil Override short-circuits all analysis.
type Request struct {
	AudioPath string
	Metadata  *model.Metadata
	Override  *int
}

var errNoVoicedContent = errors.New("no voiced content detected")

// Resolve runs the decision procedure. It never returns an error: decode
// and estimation failures collapse into a zero-shift fallback decision with
// a logged warning, and any scratch conversion file is removed before the
// decision is reported.
func (e *Engine) Resolve(ctx context.Context, req Request) Decision {
	log := e.cfg.Logger

	if req.Override != nil {
		log.Info("pitch shift supplied by caller",
			"semitones", *req.Override)
		return Decision{Semitones: *req.Override, Provenance: ProvenanceExplicitOverride}
	}

	baseline := 0.0
	if req.Metadata != nil {
		baseline = req.Metadata.TargetF0Hz
	}
	if baseline <= 0 || math.IsNaN(baseline) || math.IsInf(baseline, 0) {
		log.Warn("model metadata has no usable target frequency, using shift 0")
		return Decision{
			Provenance: ProvenanceNoMetadata,
			Cause:      "no target_f0_hz in model metadata",
		}
	}
	target := pitch.SingingTarget(baseline, e.cfg.SingingOffsetSemitones)

	sourceF0, stream, err := e.estimateSource(ctx, req.AudioPath)
	if err != nil {
		log.Warn("input pitch estimation failed, using shift 0",
			"input", req.AudioPath,
			"estimator", e.cfg.Estimator.Name(),
			"cause", err.Error())
		return Decision{
			Provenance: ProvenanceEstimationFailed,
			TargetF0:   target,
			Stream:     stream,
			Cause:      err.Error(),
		}
	}

	shift := pitch.SemitoneShift(sourceF0, target)
	log.Info("pitch shift computed",
		"source_f0_hz", sourceF0,
		"target_f0_hz", target,
		"semitones", shift,
		"estimator", e.cfg.Estimator.Name())
	return Decision{
		Semitones:  shift,
		Provenance: ProvenanceComputed,
		SourceF0:   sourceF0,
		TargetF0:   target,
		Stream:     stream,
	}
}

// estimateSource converts, decodes and measures the input. The scratch
// conversion file is scoped to this call: its cleanup runs on every exit
// path.
func (e *Engine) estimateSource(ctx context.Context, path string) (float64, *audio.Metadata, error) {
	wavPath, cleanup, err := e.cfg.Converter.ToWAV(ctx, path)
	if err != nil {
		return 0, nil, err
	}
	defer cleanup()

	buf, stream, err := e.cfg.Decoder.DecodeFile(wavPath)
	if err != nil {
		return 0, stream, err
	}

	f0, voiced, err := e.cfg.Estimator.EstimateF0(ctx, buf)
	if err != nil {
		return 0, stream, err
	}
	if !voiced {
		return 0, stream, errNoVoicedContent
	}
	return f0, stream, nil
}
