package logging

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/linuxmatters/jivepitch/internal/audio"
	"github.com/linuxmatters/jivepitch/internal/engine"
	"github.com/linuxmatters/jivepitch/internal/mains"
)

// RecordingTip represents a single piece of actionable recording advice
// derived from the input measurements and the pitch decision.
type RecordingTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "level_too_quiet")
}

// MaxRecordingTips is the maximum number of tips to return.
const MaxRecordingTips = 5

// humToleranceHz is how close the measured fundamental must sit to the grid
// frequency (or its second harmonic) before we suspect hum capture.
const humToleranceHz = 2.0

// Diagnosis bundles the facts the tip rules examine.
type Diagnosis struct {
	Decision engine.Decision
	Stats    *audio.Stats // nil when the input was never decoded
	MainsHz  int          // local grid frequency, 50 or 60
}

// GenerateRecordingTips inspects a finished resolution and returns
// prioritised suggestions for improving the source recording.
func GenerateRecordingTips(d *Diagnosis) []RecordingTip {
	if d == nil {
		return nil
	}

	var tips []RecordingTip
	firedRules := make(map[string]bool)

	rules := []func(*Diagnosis) *RecordingTip{
		tipNoModelMetadata,
		tipEstimationFailed,
		tipMainsHum,
		tipLargeShift,
		tipClipping,
		tipLevelTooHot,
		tipLevelTooQuiet,
		tipMostlySilence,
		tipDCOffset,
		tipNoisyRoom,
		tipLowSampleRate,
	}

	for _, rule := range rules {
		if tip := rule(d); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	// Apply mutual exclusion
	tips = applyExclusions(tips, firedRules)

	// Sort by priority (descending)
	sort.Slice(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	// Cap at maximum
	if len(tips) > MaxRecordingTips {
		tips = tips[:MaxRecordingTips]
	}

	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. For example, "level_too_quiet" is suppressed when
// "mostly_silence" fires because long stretches of dead air drag the
// average level down on their own.
func applyExclusions(tips []RecordingTip, fired map[string]bool) []RecordingTip {
	var result []RecordingTip
	for _, tip := range tips {
		switch tip.RuleID {
		case "level_too_quiet":
			if fired["mostly_silence"] {
				continue
			}
		case "level_too_hot":
			if fired["clipping"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// tipNoModelMetadata fires when the model carries no usable baseline and the
// run fell back to a zero shift.
func tipNoModelMetadata(d *Diagnosis) *RecordingTip {
	if d.Decision.Provenance != engine.ProvenanceNoMetadata {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "no_model_metadata",
		Message:  "The voice model has no target_f0_hz in its metadata, so the take was rendered unshifted. Re-export the model descriptor with a baseline frequency, or pass the shift explicitly with --pitch.",
	}
}

// tipEstimationFailed fires when the input defeated the pitch estimator.
func tipEstimationFailed(d *Diagnosis) *RecordingTip {
	if d.Decision.Provenance != engine.ProvenanceEstimationFailed {
		return nil
	}
	return &RecordingTip{
		Priority: 10,
		RuleID:   "estimation_failed",
		Message:  "No reliable pitch could be measured from the input, so the take was rendered unshifted. Check that the file contains audible singing or speech, or pass the shift explicitly with --pitch.",
	}
}

// tipMainsHum fires when the measured fundamental sits on the local grid
// frequency or its second harmonic, the classic signature of electrical hum
// captured louder than the voice.
func tipMainsHum(d *Diagnosis) *RecordingTip {
	if d.Decision.SourceF0 <= 0 || d.MainsHz <= 0 {
		return nil
	}
	if !mains.NearHumFor(d.Decision.SourceF0, humToleranceHz, d.MainsHz) {
		return nil
	}
	return &RecordingTip{
		Priority: 9,
		RuleID:   "mains_hum",
		Message:  fmt.Sprintf("The measured pitch (%.1f Hz) sits on the %d Hz mains frequency, so the analysis may have locked onto electrical hum. Move power supplies, monitors, or chargers further from your microphone and re-record.", d.Decision.SourceF0, d.MainsHz),
	}
}

// tipLargeShift fires when the resolved shift is big enough to strain the
// converter.
func tipLargeShift(d *Diagnosis) *RecordingTip {
	shift := d.Decision.Semitones
	if shift > -7 && shift < 7 {
		return nil
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "large_shift",
		Message:  fmt.Sprintf("The resolved shift is %+d semitones; conversions beyond half an octave often sound strained. A take sung closer to the model's register will convert more naturally.", shift),
	}
}

// tipClipping fires when a meaningful share of samples hit full scale.
func tipClipping(d *Diagnosis) *RecordingTip {
	if d.Stats == nil || d.Stats.ClippedRatio < 0.0001 {
		return nil
	}
	return &RecordingTip{
		Priority: 9,
		RuleID:   "clipping",
		Message:  fmt.Sprintf("%.2f%% of the input samples are clipped, which distorts the harmonics the converter relies on. Lower the recording gain until peaks stay under -3 dBFS.", d.Stats.ClippedRatio*100),
	}
}

// tipLevelTooHot fires when peaks run against full scale without clipping.
func tipLevelTooHot(d *Diagnosis) *RecordingTip {
	if d.Stats == nil || d.Stats.PeakDB() < -1.0 {
		return nil
	}
	return &RecordingTip{
		Priority: 5,
		RuleID:   "level_too_hot",
		Message:  "Input peaks are running against full scale. Leave a few dB of headroom when recording so transients survive intact.",
	}
}

// tipLevelTooQuiet fires when the overall level is far below a healthy
// recording level (RMS < -36 dBFS, gain target -24 dBFS).
func tipLevelTooQuiet(d *Diagnosis) *RecordingTip {
	if d.Stats == nil || d.Stats.RMSLevel >= -36.0 {
		return nil
	}
	gainNeeded := -24.0 - d.Stats.RMSLevel
	return &RecordingTip{
		Priority: 8,
		RuleID:   "level_too_quiet",
		Message:  fmt.Sprintf("Your recording level is very low - try increasing the microphone gain by about %.0f dB.", gainNeeded),
	}
}

// tipMostlySilence fires when most of the file carries no signal.
func tipMostlySilence(d *Diagnosis) *RecordingTip {
	if d.Stats == nil || d.Stats.SilenceRatio < 0.6 {
		return nil
	}
	return &RecordingTip{
		Priority: 7,
		RuleID:   "mostly_silence",
		Message:  fmt.Sprintf("%.0f%% of the input is silence. Trim the dead air before converting - the pitch analysis works from a window at the middle of the file and can land on an empty stretch.", d.Stats.SilenceRatio*100),
	}
}

// tipDCOffset fires on a constant offset, usually a hardware fault.
func tipDCOffset(d *Diagnosis) *RecordingTip {
	if d.Stats == nil || math.Abs(d.Stats.DCOffset) < 0.02 {
		return nil
	}
	return &RecordingTip{
		Priority: 4,
		RuleID:   "dc_offset",
		Message:  "The recording carries a constant DC offset, which usually points at a faulty interface or cable. Record a short test clip after swapping the cable or input channel.",
	}
}

// tipNoisyRoom fires when the quietest stretches of the recording are loud.
// Thresholds: -45 dBFS (clearly noisy), -55 dBFS (slightly elevated).
func tipNoisyRoom(d *Diagnosis) *RecordingTip {
	if d.Stats == nil {
		return nil
	}
	nf := d.Stats.NoiseFloor
	if nf > -45.0 {
		return &RecordingTip{
			Priority: 8,
			RuleID:   "background_noise_high",
			Message:  fmt.Sprintf("Background noise is high (%.0f dBFS) - try turning off fans, air conditioning, or other appliances before recording.", nf),
		}
	}
	if nf > -55.0 {
		return &RecordingTip{
			Priority: 5,
			RuleID:   "background_noise_moderate",
			Message:  fmt.Sprintf("Background noise is slightly elevated (%.0f dBFS) - if possible, turn off any fans or appliances nearby.", nf),
		}
	}
	return nil
}

// tipLowSampleRate fires when the container sample rate undercuts the
// harmonics the converter needs.
func tipLowSampleRate(d *Diagnosis) *RecordingTip {
	stream := d.Decision.Stream
	if stream == nil || stream.SampleRate >= 16000 {
		return nil
	}
	return &RecordingTip{
		Priority: 3,
		RuleID:   "low_sample_rate",
		Message:  fmt.Sprintf("The input is sampled at %d Hz. Record at 44.1 kHz or better - low rates shave off the upper harmonics of the voice.", stream.SampleRate),
	}
}
