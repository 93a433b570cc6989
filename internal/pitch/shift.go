package pitch

import "math"

const (
	semitonesPerOctave = 12.0

	// DefaultSingingOffset raises a speaking-register baseline into an
	// assumed singing register. A fixed heuristic, not a measurement:
	// +6 semitones is roughly x1.414, taking e.g. 120 Hz to ~170 Hz.
	DefaultSingingOffset = 6.0 // semitones
)

// SemitoneShift returns the signed integer semitone transposition that moves
// sourceHz onto targetHz, rounded to the nearest semitone with ties away
// from zero. Non-positive or non-finite inputs yield 0, as does a non-finite
// log ratio, so the caller never has to guard the arithmetic.
func SemitoneShift(sourceHz, targetHz float64) int {
	if !finitePositive(sourceHz) || !finitePositive(targetHz) {
		return 0
	}
	st := semitonesPerOctave * math.Log2(targetHz/sourceHz)
	if math.IsNaN(st) || math.IsInf(st, 0) {
		return 0
	}
	return int(math.Round(st))
}

// SingingTarget raises a speaking-register baseline frequency by
// offsetSemitones to produce a singing-register target.
func SingingTarget(baselineHz, offsetSemitones float64) float64 {
	return baselineHz * math.Exp2(offsetSemitones/semitonesPerOctave)
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
