package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// CanonicalRate is the analysis sample rate the high-precision estimators
// expect their input resampled to.
const CanonicalRate = 16000

// Resample converts the buffer to the target sample rate using the pure Go
// soxr port. The input buffer is returned unchanged when it already matches
// the target rate or is empty.
func Resample(buf Buffer, targetRate int) (Buffer, error) {
	if targetRate <= 0 {
		return Buffer{}, fmt.Errorf("resample: invalid target rate %d", targetRate)
	}
	if buf.SampleRate == targetRate || buf.Empty() {
		return Buffer{Samples: buf.Samples, SampleRate: targetRate}, nil
	}
	if buf.SampleRate <= 0 {
		return Buffer{}, fmt.Errorf("resample: invalid source rate %d", buf.SampleRate)
	}

	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(buf.SampleRate),
		OutputRate: float64(targetRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return Buffer{}, fmt.Errorf("resample: %w", err)
	}

	out, err := r.Process(buf.Samples)
	if err != nil {
		return Buffer{}, fmt.Errorf("resample %d -> %d Hz: %w", buf.SampleRate, targetRate, err)
	}
	// The polyphase filter holds back a few tail samples; for multi-second
	// pitch analysis the loss is well under one frame and does not matter.
	return Buffer{Samples: out, SampleRate: targetRate}, nil
}
