package pitch

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/linuxmatters/jivepitch/internal/audio"
)

// Contour acceptance band. Values at or beyond these bounds are treated as
// analyzer artifacts and dropped before the median.
const (
	contourFloor = 50.0   // Hz - exclusive lower bound
	contourCeil  = 1100.0 // Hz - exclusive upper bound
)

// HighPrecision adapts a per-frame contour analyzer into an Estimator: the
// buffer is resampled to the canonical analysis rate, the contour is
// filtered to finite values strictly inside the acceptance band, and the
// estimate is their median.
type HighPrecision struct {
	Source ContourSource
	FMin   float64 // Hz - exclusive lower acceptance bound (default 50)
	FMax   float64 // Hz - exclusive upper acceptance bound (default 1100)
}

// NewHighPrecision wraps a contour source with the standard acceptance band.
func NewHighPrecision(src ContourSource) *HighPrecision {
	return &HighPrecision{Source: src, FMin: contourFloor, FMax: contourCeil}
}

func (h *HighPrecision) Name() string { return h.Source.Name() }

func (h *HighPrecision) EstimateF0(ctx context.Context, buf audio.Buffer) (float64, bool, error) {
	if buf.Empty() || buf.SampleRate <= 0 {
		return 0, false, nil
	}

	canon, err := audio.Resample(buf, audio.CanonicalRate)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", h.Name(), err)
	}

	contour, err := h.Source.Contour(ctx, canon)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", h.Name(), err)
	}

	fmin, fmax := h.FMin, h.FMax
	if fmin <= 0 {
		fmin = contourFloor
	}
	if fmax <= 0 {
		fmax = contourCeil
	}

	var voiced []float64
	for _, f := range contour {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if f > fmin && f < fmax {
			voiced = append(voiced, f)
		}
	}
	if len(voiced) == 0 {
		return 0, false, nil
	}
	return median(voiced), true, nil
}

// median averages the two middle values for even-length input.
func median(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
