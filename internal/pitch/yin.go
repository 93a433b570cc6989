package pitch

import (
	"context"

	"github.com/linuxmatters/jivepitch/internal/audio"
)

// YIN analysis constants.
const (
	yinFrameSec = 0.064 // seconds - frame length, two 50 Hz periods with margin
	yinHopSec   = 0.010 // seconds - contour frame period

	// defaultYinThreshold accepts the first normalized-difference dip below
	// this value as the period candidate. Lower is stricter voicing.
	defaultYinThreshold = 0.15
)

// YIN produces an f0 contour with the YIN algorithm (de Cheveigne & Kawahara
// 2002): a cumulative mean normalized difference function per frame, an
// absolute threshold picking the first dip, and parabolic refinement of the
// winning lag.
type YIN struct {
	Threshold float64 // normalized difference acceptance level (default 0.15)
	FMin      float64 // Hz - lowest reportable f0 (default 50)
	FMax      float64 // Hz - highest reportable f0 (default 1100)
}

// NewYIN returns a contour source over the full vocal range.
func NewYIN() *YIN {
	return &YIN{Threshold: defaultYinThreshold, FMin: contourFloor, FMax: contourCeil}
}

func (y *YIN) Name() string { return "yin" }

// Contour returns one f0 value per hop, 0 for unvoiced frames. Buffers
// shorter than one frame yield an empty contour.
func (y *YIN) Contour(_ context.Context, buf audio.Buffer) ([]float64, error) {
	sr := buf.SampleRate
	if buf.Empty() || sr <= 0 {
		return nil, nil
	}

	frameLen := int(float64(sr) * yinFrameSec)
	hop := int(float64(sr) * yinHopSec)
	if frameLen < 4 || hop <= 0 || len(buf.Samples) < frameLen {
		return nil, nil
	}

	threshold := y.Threshold
	if threshold <= 0 {
		threshold = defaultYinThreshold
	}
	fmin, fmax := y.FMin, y.FMax
	if fmin <= 0 {
		fmin = contourFloor
	}
	if fmax <= 0 {
		fmax = contourCeil
	}

	var contour []float64
	for start := 0; start+frameLen <= len(buf.Samples); start += hop {
		frame := buf.Samples[start : start+frameLen]
		contour = append(contour, yinFrame(frame, sr, threshold, fmin, fmax))
	}
	return contour, nil
}

// yinFrame returns the f0 of one frame, or 0 when unvoiced.
func yinFrame(frame []float64, sr int, threshold, fmin, fmax float64) float64 {
	halfN := len(frame) / 2

	// Difference function d(tau) over the first half of the frame.
	diff := make([]float64, halfN)
	for tau := 1; tau < halfN; tau++ {
		var sum float64
		for j := 0; j < halfN; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference function.
	cmndf := make([]float64, halfN)
	cmndf[0] = 1.0
	var running float64
	for tau := 1; tau < halfN; tau++ {
		running += diff[tau]
		if running == 0 {
			cmndf[tau] = 1.0 // silent so far
			continue
		}
		cmndf[tau] = diff[tau] * float64(tau) / running
	}

	// First local minimum below the threshold.
	best := -1
	for tau := 1; tau < halfN-1; tau++ {
		if cmndf[tau] < threshold && cmndf[tau] < cmndf[tau+1] {
			best = tau
			break
		}
	}
	if best <= 0 {
		return 0
	}

	period := refineLag(cmndf, best)
	if period <= 0 {
		return 0
	}
	hz := float64(sr) / period
	if hz < fmin || hz > fmax {
		return 0
	}
	return hz
}

// refineLag sharpens an integer lag by fitting a parabola through the
// normalized difference values around it.
func refineLag(cmndf []float64, idx int) float64 {
	if idx <= 0 || idx >= len(cmndf)-1 {
		return float64(idx)
	}
	y1, y2, y3 := cmndf[idx-1], cmndf[idx], cmndf[idx+1]
	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2
	if a == 0 {
		return float64(idx)
	}
	return float64(idx) - b/(2*a)
}
