package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linuxmatters/jivepitch/internal/audio"
	"github.com/linuxmatters/jivepitch/internal/model"
	"github.com/linuxmatters/jivepitch/internal/pitch"
)

// testRig wires an engine with counting collaborators so tests can assert
// which stages ran.
type testRig struct {
	engine    *Engine
	decoder   *countingDecoder
	estimator *countingEstimator
	converter *stubConverter
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	rig := &testRig{
		decoder:   &countingDecoder{inner: FileDecoder{}},
		estimator: &countingEstimator{inner: pitch.NewAutocorr()},
		converter: &stubConverter{},
	}
	rig.engine = New(Config{
		SingingOffsetSemitones: pitch.DefaultSingingOffset,
		Estimator:              rig.estimator,
		Decoder:                rig.decoder,
		Converter:              rig.converter,
		Logger:                 slog.New(slog.DiscardHandler),
	})
	return rig
}

func TestResolveComputedShift(t *testing.T) {
	// A 220 Hz input against a 185 Hz speaking baseline: the singing target
	// is ~261.63 Hz and the computed shift is +3 semitones.
	rig := newTestRig(t)
	audioPath := writeTone(t, 220.0, 16000, 2.0)
	meta := &model.Metadata{TargetF0Hz: 185.0}

	d := rig.engine.Resolve(context.Background(), Request{AudioPath: audioPath, Metadata: meta})

	if d.Provenance != ProvenanceComputed {
		t.Fatalf("provenance = %s, want %s (cause: %s)", d.Provenance, ProvenanceComputed, d.Cause)
	}
	if d.Semitones != 3 {
		t.Errorf("semitones = %d, want 3", d.Semitones)
	}
	if math.Abs(d.SourceF0-220.0) > 2.0 {
		t.Errorf("source f0 = %.4f Hz, want 220 +/- 2", d.SourceF0)
	}
	if math.Abs(d.TargetF0-261.6295) > 0.01 {
		t.Errorf("target f0 = %.4f Hz, want 261.63", d.TargetF0)
	}
	if d.Stream == nil || d.Stream.SampleRate != 16000 {
		t.Errorf("stream metadata = %+v, want decoded facts", d.Stream)
	}
	if d.Fallback() {
		t.Error("computed decision reported as fallback")
	}
	if rig.decoder.calls != 1 || rig.estimator.calls != 1 {
		t.Errorf("decoder/estimator calls = %d/%d, want 1/1", rig.decoder.calls, rig.estimator.calls)
	}
}

func TestResolveNoMetadata(t *testing.T) {
	rig := newTestRig(t)

	d := rig.engine.Resolve(context.Background(), Request{AudioPath: "/irrelevant.wav"})

	if d.Provenance != ProvenanceNoMetadata {
		t.Fatalf("provenance = %s, want %s", d.Provenance, ProvenanceNoMetadata)
	}
	if d.Semitones != 0 {
		t.Errorf("semitones = %d, want 0", d.Semitones)
	}
	if !d.Fallback() {
		t.Error("no-metadata decision not reported as fallback")
	}
	if rig.converter.calls != 0 || rig.decoder.calls != 0 || rig.estimator.calls != 0 {
		t.Errorf("analysis ran without metadata: converter=%d decoder=%d estimator=%d",
			rig.converter.calls, rig.decoder.calls, rig.estimator.calls)
	}
}

func TestResolveUnusableMetadata(t *testing.T) {
	tests := []struct {
		name   string
		target float64
	}{
		{"zero baseline", 0},
		{"negative baseline", -40},
		{"nan baseline", math.NaN()},
		{"infinite baseline", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rig := newTestRig(t)
			meta := &model.Metadata{TargetF0Hz: tt.target}

			d := rig.engine.Resolve(context.Background(), Request{AudioPath: "/irrelevant.wav", Metadata: meta})

			if d.Provenance != ProvenanceNoMetadata {
				t.Errorf("provenance = %s, want %s", d.Provenance, ProvenanceNoMetadata)
			}
			if rig.decoder.calls != 0 {
				t.Errorf("decoder ran %d times for unusable metadata", rig.decoder.calls)
			}
		})
	}
}

func TestResolveZeroLengthAudio(t *testing.T) {
	// Zero-length audio decodes cleanly but yields no voiced content.
	rig := newTestRig(t)
	audioPath := filepath.Join(t.TempDir(), "empty.wav")
	if err := audio.EncodeFile(audioPath, nil, 16000); err != nil {
		t.Fatal(err)
	}
	meta := &model.Metadata{TargetF0Hz: 185.0}

	d := rig.engine.Resolve(context.Background(), Request{AudioPath: audioPath, Metadata: meta})

	if d.Provenance != ProvenanceEstimationFailed {
		t.Fatalf("provenance = %s, want %s", d.Provenance, ProvenanceEstimationFailed)
	}
	if d.Semitones != 0 {
		t.Errorf("semitones = %d, want 0", d.Semitones)
	}
	if !strings.Contains(d.Cause, "no voiced content") {
		t.Errorf("cause = %q, want the voicing failure", d.Cause)
	}
	if !rig.converter.cleaned {
		t.Error("scratch cleanup did not run before the decision was reported")
	}
}

func TestResolveExplicitOverride(t *testing.T) {
	rig := newTestRig(t)
	override := -5
	meta := &model.Metadata{TargetF0Hz: 185.0}

	d := rig.engine.Resolve(context.Background(), Request{
		AudioPath: "/irrelevant.wav",
		Metadata:  meta,
		Override:  &override,
	})

	if d.Provenance != ProvenanceExplicitOverride {
		t.Fatalf("provenance = %s, want %s", d.Provenance, ProvenanceExplicitOverride)
	}
	if d.Semitones != -5 {
		t.Errorf("semitones = %d, want -5", d.Semitones)
	}
	if rig.converter.calls != 0 || rig.decoder.calls != 0 || rig.estimator.calls != 0 {
		t.Errorf("override still ran analysis: converter=%d decoder=%d estimator=%d",
			rig.converter.calls, rig.decoder.calls, rig.estimator.calls)
	}
}

func TestResolveDecodeFailure(t *testing.T) {
	rig := newTestRig(t)
	audioPath := filepath.Join(t.TempDir(), "garbage.wav")
	if err := writeFile(audioPath, []byte("definitely not a wav")); err != nil {
		t.Fatal(err)
	}
	meta := &model.Metadata{TargetF0Hz: 185.0}

	d := rig.engine.Resolve(context.Background(), Request{AudioPath: audioPath, Metadata: meta})

	if d.Provenance != ProvenanceEstimationFailed {
		t.Fatalf("provenance = %s, want %s", d.Provenance, ProvenanceEstimationFailed)
	}
	if !strings.Contains(d.Cause, "wav decode") {
		t.Errorf("cause = %q, want the decode failure", d.Cause)
	}
	if rig.decoder.calls != 1 {
		t.Errorf("decoder calls = %d, want 1", rig.decoder.calls)
	}
	if rig.estimator.calls != 0 {
		t.Errorf("estimator ran %d times after a decode failure", rig.estimator.calls)
	}
	if !rig.converter.cleaned {
		t.Error("scratch cleanup did not run on the decode failure path")
	}
}

func TestResolveConverterFailure(t *testing.T) {
	rig := newTestRig(t)
	rig.converter.err = errors.New("ffmpeg exploded")
	meta := &model.Metadata{TargetF0Hz: 185.0}

	d := rig.engine.Resolve(context.Background(), Request{AudioPath: "/song.mp3", Metadata: meta})

	if d.Provenance != ProvenanceEstimationFailed {
		t.Fatalf("provenance = %s, want %s", d.Provenance, ProvenanceEstimationFailed)
	}
	if !strings.Contains(d.Cause, "ffmpeg exploded") {
		t.Errorf("cause = %q, want the conversion failure", d.Cause)
	}
	if rig.decoder.calls != 0 {
		t.Errorf("decoder ran %d times after a conversion failure", rig.decoder.calls)
	}
}

func TestResolveEstimatorError(t *testing.T) {
	rig := newTestRig(t)
	audioPath := writeTone(t, 220.0, 16000, 0.5)
	broken := &errorEstimator{err: errors.New("analyzer crashed")}
	rig.engine = New(Config{
		Estimator: broken,
		Decoder:   rig.decoder,
		Converter: rig.converter,
		Logger:    slog.New(slog.DiscardHandler),
	})
	meta := &model.Metadata{TargetF0Hz: 185.0}

	d := rig.engine.Resolve(context.Background(), Request{AudioPath: audioPath, Metadata: meta})

	if d.Provenance != ProvenanceEstimationFailed {
		t.Fatalf("provenance = %s, want %s", d.Provenance, ProvenanceEstimationFailed)
	}
	if !strings.Contains(d.Cause, "analyzer crashed") {
		t.Errorf("cause = %q, want the estimator failure", d.Cause)
	}
	if !rig.converter.cleaned {
		t.Error("scratch cleanup did not run on the estimator failure path")
	}
}

func TestResolveScratchCleanupOnSuccess(t *testing.T) {
	rig := newTestRig(t)
	audioPath := writeTone(t, 220.0, 16000, 2.0)
	meta := &model.Metadata{TargetF0Hz: 185.0}

	d := rig.engine.Resolve(context.Background(), Request{AudioPath: audioPath, Metadata: meta})

	if d.Provenance != ProvenanceComputed {
		t.Fatalf("provenance = %s, want %s (cause: %s)", d.Provenance, ProvenanceComputed, d.Cause)
	}
	if !rig.converter.cleaned {
		t.Error("scratch cleanup did not run on the success path")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SingingOffsetSemitones != pitch.DefaultSingingOffset {
		t.Errorf("offset = %v, want %v", cfg.SingingOffsetSemitones, pitch.DefaultSingingOffset)
	}
	if cfg.Estimator == nil || cfg.Estimator.Name() != "autocorr" {
		t.Error("default estimator is not autocorr")
	}

	// New must fill missing collaborators.
	e := New(Config{Logger: slog.New(slog.DiscardHandler)})
	if e.EstimatorName() != "autocorr" {
		t.Errorf("EstimatorName = %s, want autocorr", e.EstimatorName())
	}
}
