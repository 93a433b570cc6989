package pitch

import (
	"context"
	"math"
	"slices"

	"github.com/linuxmatters/jivepitch/internal/audio"
)

// Autocorrelation analysis constants.
const (
	// Analysis window geometry
	analysisWindowSec = 8.0   // seconds - central chunk analyzed on long inputs
	frameSec          = 0.040 // seconds - analysis frame length
	hopSec            = 0.010 // seconds - hop between frames

	// Voicing gate
	energyFloor = 1e-5 // mean squared amplitude below which a frame is silent
)

// Default fundamental search band.
const (
	DefaultFMin = 50.0  // Hz - male vocal floor
	DefaultFMax = 500.0 // Hz - upper spoken/sung fundamental
)

// Autocorr estimates a representative fundamental frequency by brute-force
// time-domain autocorrelation: each voiced frame votes with the frequency of
// its best-correlating lag and the buffer's estimate is the median vote.
//
// The correlation is direct rather than FFT-accelerated, which is O(frames x
// lags x frame length); capping the analysis window keeps that affordable on
// long inputs.
type Autocorr struct {
	FMin float64 // Hz - lowest admissible fundamental (default 50)
	FMax float64 // Hz - highest admissible fundamental (default 500)
}

// NewAutocorr returns an estimator over the default vocal band.
func NewAutocorr() *Autocorr {
	return &Autocorr{FMin: DefaultFMin, FMax: DefaultFMax}
}

func (a *Autocorr) Name() string { return "autocorr" }

// EstimateF0 analyzes up to 8 seconds from the middle of the buffer. Frames
// of 40ms at a 10ms hop are gated on energy after DC removal; each surviving
// frame contributes the frequency of the lag maximizing its unnormalized
// autocorrelation, kept only when inside the search band. The result is the
// upper median of the per-frame votes.
func (a *Autocorr) EstimateF0(_ context.Context, buf audio.Buffer) (float64, bool, error) {
	sr := buf.SampleRate
	if buf.Empty() || sr <= 0 {
		return 0, false, nil
	}

	x := centerWindow(buf.Samples, int(float64(sr)*analysisWindowSec))
	x = removeDC(x)

	frameLen := int(float64(sr) * frameSec)
	hop := int(float64(sr) * hopSec)
	if frameLen <= 0 || hop <= 0 || len(x) < frameLen {
		return 0, false, nil
	}

	fmin, fmax := a.band()
	minLag := int(float64(sr) / fmax)
	maxLag := int(float64(sr) / fmin)
	if maxLag <= minLag+1 {
		return 0, false, nil
	}

	var votes []float64
	for start := 0; start < len(x)-frameLen; start += hop {
		frame := x[start : start+frameLen]
		if meanEnergy(frame) < energyFloor {
			continue
		}

		bestLag := 0
		bestVal := math.Inf(-1)
		for lag := minLag; lag < maxLag; lag++ {
			var s float64
			for j := 0; j < frameLen-lag; j++ {
				s += frame[j] * frame[j+lag]
			}
			if s > bestVal {
				bestVal = s
				bestLag = lag
			}
		}
		if bestLag > 0 && bestVal > 0 {
			hz := float64(sr) / float64(bestLag)
			if hz >= fmin && hz <= fmax {
				votes = append(votes, hz)
			}
		}
	}

	if len(votes) == 0 {
		return 0, false, nil
	}
	return upperMedian(votes), true, nil
}

func (a *Autocorr) band() (fmin, fmax float64) {
	fmin, fmax = a.FMin, a.FMax
	if fmin <= 0 {
		fmin = DefaultFMin
	}
	if fmax <= 0 {
		fmax = DefaultFMax
	}
	return fmin, fmax
}

// centerWindow returns up to maxLen samples taken from the middle of x.
func centerWindow(x []float64, maxLen int) []float64 {
	if maxLen <= 0 || len(x) <= maxLen {
		return x
	}
	start := (len(x) - maxLen) / 2
	return x[start : start+maxLen]
}

// removeDC returns a copy of x with its arithmetic mean subtracted.
func removeDC(x []float64) []float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))

	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - mean
	}
	return out
}

// meanEnergy returns the mean squared amplitude of a frame.
func meanEnergy(frame []float64) float64 {
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return sum / float64(len(frame))
}

// upperMedian returns element n/2 of the sorted values, the upper of the two
// middle elements for even counts. Robust against octave-jump outliers where
// a mean would not be.
func upperMedian(vals []float64) float64 {
	s := slices.Clone(vals)
	slices.Sort(s)
	return s[len(s)/2]
}
