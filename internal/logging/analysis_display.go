// Package logging handles generation of conversion reports for rendered takes.
// This file provides console display for no-UI and dry runs.

package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/jivepitch/internal/audio"
	"github.com/linuxmatters/jivepitch/internal/engine"
)

// DisplayDecision outputs the pitch resolution to the console. Used by
// --no-ui and dry runs for rapid inspection without the full-screen UI.
func DisplayDecision(w io.Writer, inputPath string, decision engine.Decision, estimator string, stats *audio.Stats, tips []RecordingTip) {
	// Header
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "PITCH RESOLUTION: %s\n", filepath.Base(inputPath))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	// File info
	if stream := decision.Stream; stream != nil {
		fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(stream.Duration))
		fmt.Fprintf(w, "Sample Rate: %d Hz\n", stream.SampleRate)
		fmt.Fprintf(w, "Channels:    %s\n", channelName(stream.Channels))
		fmt.Fprintf(w, "Format:      %s\n", sampleFormatName(stream))
	}
	fmt.Fprintln(w)

	// Decision section
	writeAnalysisSection(w, "DECISION")
	fmt.Fprintf(w, "  Shift:          %+d semitones\n", decision.Semitones)
	fmt.Fprintf(w, "  Provenance:     %s\n", decision.Provenance)
	switch decision.Provenance {
	case engine.ProvenanceComputed:
		fmt.Fprintf(w, "  Source f0:      %.1f Hz (%s)\n", decision.SourceF0, estimator)
		fmt.Fprintf(w, "  Target f0:      %.1f Hz\n", decision.TargetF0)
	case engine.ProvenanceEstimationFailed:
		fmt.Fprintf(w, "  Target f0:      %.1f Hz\n", decision.TargetF0)
		fmt.Fprintf(w, "  Cause:          %s\n", decision.Cause)
	case engine.ProvenanceNoMetadata:
		fmt.Fprintf(w, "  Cause:          %s\n", decision.Cause)
	}
	fmt.Fprintln(w)

	// Input measurements section
	if stats != nil {
		writeAnalysisSection(w, "INPUT MEASUREMENTS")
		fmt.Fprintf(w, "  Peak Level:     %s dBFS\n", formatMetricPeak(stats.Peak, 1))
		fmt.Fprintf(w, "  RMS Level:      %s dBFS\n", formatMetricDB(stats.RMSLevel, 1))
		fmt.Fprintf(w, "  Noise Floor:    %s dBFS\n", formatMetricDB(stats.NoiseFloor, 1))
		fmt.Fprintf(w, "  DC Offset:      %s\n", formatMetricSigned(stats.DCOffset, 4))
		fmt.Fprintf(w, "  Clipped:        %.2f%%\n", stats.ClippedRatio*100)
		fmt.Fprintf(w, "  Silence:        %.0f%%\n", stats.SilenceRatio*100)
		fmt.Fprintln(w)
	}

	// Tips section
	if len(tips) > 0 {
		writeAnalysisSection(w, "RECORDING TIPS")
		for i, tip := range tips {
			fmt.Fprintf(w, "  %d. %s\n", i+1, wrapText(tip.Message, 64, "     "))
		}
	}
}

// writeAnalysisSection writes a section header for console output.
func writeAnalysisSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
}

// sampleFormatName renders the decoded sample format for display.
func sampleFormatName(m *audio.Metadata) string {
	return fmt.Sprintf("%s %d-bit", m.SampleFmt, m.BitDepth)
}

// formatDurationHMS formats duration as "Xh Ym Zs" or "Ym Zs" or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}
