// Package engine implements the pitch resolution decision procedure: an
// explicit-override-first, fail-to-zero state machine that turns a synthesis
// request into one integer semitone shift.
package engine

import "github.com/linuxmatters/jivepitch/internal/audio"

// Provenance labels which branch of the decision procedure produced a value.
// Exactly one tag applies per invocation.
type Provenance string

const (
	// ProvenanceExplicitOverride: the caller supplied the shift directly.
	ProvenanceExplicitOverride Provenance = "explicit-override"
	// ProvenanceComputed: the shift was derived from measured and target
	// frequencies.
	ProvenanceComputed Provenance = "computed"
	// ProvenanceNoMetadata: the model carries no usable target frequency.
	ProvenanceNoMetadata Provenance = "fallback-no-metadata"
	// ProvenanceEstimationFailed: decoding or estimation of the input
	// failed, or found no voiced content.
	ProvenanceEstimationFailed Provenance = "fallback-estimation-failed"
)

// Decision is the final resolution output. A wrong or missing shift is a
// soft quality degradation, never a hard failure, so the zero value (shift
// 0) is always safe to hand to the synthesizer.
type Decision struct {
	Semitones  int
	Provenance Provenance

	// Observability fields; never consumed by the synthesis arguments.
	SourceF0 float64         // Hz - measured input fundamental, when computed
	TargetF0 float64         // Hz - singing-register target, when resolved
	Stream   *audio.Metadata // decoded container facts, when decoding ran
	Cause    string          // human-readable fallback reason
}

// Fallback reports whether the decision came from a degraded path.
func (d Decision) Fallback() bool {
	return d.Provenance == ProvenanceNoMetadata || d.Provenance == ProvenanceEstimationFailed
}
