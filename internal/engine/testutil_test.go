package engine

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxmatters/jivepitch/internal/audio"
	"github.com/linuxmatters/jivepitch/internal/pitch"
)

// countingDecoder counts invocations before delegating.
type countingDecoder struct {
	inner Decoder
	calls int
}

func (d *countingDecoder) DecodeFile(path string) (audio.Buffer, *audio.Metadata, error) {
	d.calls++
	return d.inner.DecodeFile(path)
}

// countingEstimator counts invocations before delegating.
type countingEstimator struct {
	inner pitch.Estimator
	calls int
}

func (e *countingEstimator) Name() string { return e.inner.Name() }

func (e *countingEstimator) EstimateF0(ctx context.Context, buf audio.Buffer) (float64, bool, error) {
	e.calls++
	return e.inner.EstimateF0(ctx, buf)
}

// stubConverter passes the source through untouched and records whether the
// cleanup callback ran.
type stubConverter struct {
	calls   int
	cleaned bool
	err     error
}

func (c *stubConverter) ToWAV(_ context.Context, src string) (string, func(), error) {
	c.calls++
	if c.err != nil {
		return "", func() {}, c.err
	}
	return src, func() { c.cleaned = true }, nil
}

// errorEstimator always reports an analysis failure.
type errorEstimator struct {
	err error
}

func (e *errorEstimator) Name() string { return "broken" }

func (e *errorEstimator) EstimateF0(context.Context, audio.Buffer) (float64, bool, error) {
	return 0, false, e.err
}

// writeTone encodes a mono sine tone to a temp WAV file and returns its path.
func writeTone(t *testing.T, freq float64, sampleRate int, seconds float64) string {
	t.Helper()
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := audio.EncodeFile(path, samples, sampleRate); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
