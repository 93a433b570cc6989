// Package pitch estimates the fundamental frequency of voice recordings and
// converts frequency ratios into integer semitone shifts.
package pitch

import (
	"context"

	"github.com/linuxmatters/jivepitch/internal/audio"
)

// Estimator produces one representative fundamental frequency for a sample
// buffer.
//
// ok is false when no voiced content could be measured, the normal outcome
// for silence or unpitched noise, not an error. Errors are reserved for
// analyzers that failed to run at all.
type Estimator interface {
	// Name identifies the estimator in logs and reports.
	Name() string
	EstimateF0(ctx context.Context, buf audio.Buffer) (f0 float64, ok bool, err error)
}

// ContourSource produces a per-frame f0 contour, in Hz, for a buffer at the
// canonical analysis rate. Unvoiced frames are reported as 0.
type ContourSource interface {
	Name() string
	Contour(ctx context.Context, buf audio.Buffer) ([]float64, error)
}
