package audio

import (
	"math"
	"slices"
)

// Analysis framing and thresholds.
const (
	statsFrameSeconds = 0.05  // per-frame RMS window
	silenceFrameDB    = -60.0 // frames below this count as silence
	clipThreshold     = 0.999 // |sample| at or beyond this counts as clipped

	// dbFloor stands in for -Inf when a measurement hits digital silence.
	dbFloor = -120.0
)

// Stats summarises the time-domain character of a decoded buffer. The
// measurements feed the conversion report and the recording tips; nothing
// in the pitch decision depends on them.
type Stats struct {
	Peak         float64 // linear amplitude, 0..1
	RMSLevel     float64 // dBFS
	NoiseFloor   float64 // dBFS - RMS of the quietest analysis frames
	DCOffset     float64 // linear mean, -1..1
	ClippedRatio float64 // fraction of samples at or beyond full scale
	SilenceRatio float64 // fraction of frames below the silence threshold
}

// PeakDB returns the peak level in dBFS.
func (s *Stats) PeakDB() float64 { return amplitudeDB(s.Peak) }

// Analyze measures a decoded buffer. Returns nil for an empty buffer.
func Analyze(buf Buffer) *Stats {
	if buf.Empty() || buf.SampleRate <= 0 {
		return nil
	}

	var (
		peak    float64
		sum     float64
		sumSq   float64
		clipped int
	)
	for _, s := range buf.Samples {
		a := math.Abs(s)
		if a > peak {
			peak = a
		}
		if a >= clipThreshold {
			clipped++
		}
		sum += s
		sumSq += s * s
	}
	n := float64(len(buf.Samples))

	stats := &Stats{
		Peak:         peak,
		RMSLevel:     amplitudeDB(math.Sqrt(sumSq / n)),
		DCOffset:     sum / n,
		ClippedRatio: float64(clipped) / n,
	}

	frames := frameRMS(buf)
	if len(frames) == 0 {
		// Shorter than one frame: the whole buffer is the profile.
		frames = []float64{stats.RMSLevel}
	}
	silent := 0
	for _, db := range frames {
		if db < silenceFrameDB {
			silent++
		}
	}
	stats.SilenceRatio = float64(silent) / float64(len(frames))
	stats.NoiseFloor = noiseFloor(frames)

	return stats
}

// frameRMS returns the RMS level in dBFS of each non-overlapping analysis
// frame.
func frameRMS(buf Buffer) []float64 {
	frameLen := int(statsFrameSeconds * float64(buf.SampleRate))
	if frameLen <= 0 {
		return nil
	}

	var levels []float64
	for start := 0; start+frameLen <= len(buf.Samples); start += frameLen {
		var sumSq float64
		for _, s := range buf.Samples[start : start+frameLen] {
			sumSq += s * s
		}
		levels = append(levels, amplitudeDB(math.Sqrt(sumSq/float64(frameLen))))
	}
	return levels
}

// noiseFloor estimates the noise floor as the mean level of the quietest
// tenth of the frames. In voice recordings those frames are the inter-phrase
// gaps, which carry only room and electronics noise.
func noiseFloor(frames []float64) float64 {
	sorted := slices.Clone(frames)
	slices.Sort(sorted)

	count := len(sorted) / 10
	if count < 1 {
		count = 1
	}
	var sum float64
	for _, db := range sorted[:count] {
		sum += db
	}
	floor := sum / float64(count)

	// Safety clamp: -90 dB (digital silence) to -30 dB (very noisy environment)
	if floor < -90.0 {
		floor = -90.0
	} else if floor > -30.0 {
		floor = -30.0
	}
	return floor
}

// amplitudeDB converts linear amplitude to dBFS, with dbFloor standing in
// for -Inf on digital silence.
func amplitudeDB(a float64) float64 {
	if a <= 0 {
		return dbFloor
	}
	db := 20.0 * math.Log10(a)
	if db < dbFloor {
		return dbFloor
	}
	return db
}
