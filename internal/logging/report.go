// Package logging handles generation of conversion reports for rendered takes

package logging

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/jivepitch/internal/audio"
	"github.com/linuxmatters/jivepitch/internal/engine"
)

// interpretNoiseFloor classifies a measured noise floor for the report's
// interpretation column.
func interpretNoiseFloor(db float64) string {
	switch {
	case math.IsNaN(db):
		return ""
	case db <= -70.0:
		return "very quiet room"
	case db <= -55.0:
		return "normal room"
	case db <= -45.0:
		return "slightly noisy"
	default:
		return "noisy - will colour the conversion"
	}
}

// interpretClipping classifies the clipped-sample ratio.
func interpretClipping(ratio float64) string {
	switch {
	case math.IsNaN(ratio):
		return ""
	case ratio == 0:
		return "clean"
	case ratio < 0.0001:
		return "negligible"
	default:
		return "audible distortion likely"
	}
}

// writeSection writes an underlined section title.
func writeSection(f *os.File, title string) {
	fmt.Fprintln(f, title)
	fmt.Fprintln(f, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a conversion report
type ReportData struct {
	User      string
	ModelName string

	InputPath  string
	OutputPath string

	StartTime   time.Time
	EndTime     time.Time
	ResolveTime time.Duration
	AnalyzeTime time.Duration
	SynthTime   time.Duration // zero when synthesis was skipped
	VerifyTime  time.Duration // zero when synthesis was skipped

	Decision  engine.Decision
	Estimator string

	InputStats    *audio.Stats
	RenderedStats *audio.Stats // from the rendered take, when it decodes
	Tips          []RecordingTip
}

// GenerateReport creates a conversion report and saves it alongside the
// rendered take. The report filename will be <output>.log (extension swapped).
//
// Report structure:
// 1. Header - run identity and timestamp
// 2. Pipeline Summary - stage timings
// 3. Pitch Resolution - the decision and how it was reached
// 4. Input Stream - decoded container facts
// 5. Measurements - Source/Rendered comparison table
// 6. Recording Tips - prioritised advice
func GenerateReport(data ReportData) error {
	if data.OutputPath == "" {
		return errors.New("no output path to write the report next to")
	}
	logPath := strings.TrimSuffix(data.OutputPath, filepath.Ext(data.OutputPath)) + ".log"

	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, data)
	writePipelineSummary(f, data)
	writePitchResolution(f, data)
	writeInputStream(f, data.Decision.Stream)
	writeMeasurementsTable(f, data.InputStats, data.RenderedStats)
	writeRecordingTips(f, data.Tips)

	return nil
}

// writeReportHeader outputs the report banner and run identity.
func writeReportHeader(f *os.File, data ReportData) {
	fmt.Fprintln(f, "Jivepitch Conversion Report")
	fmt.Fprintln(f, "===========================")
	fmt.Fprintf(f, "Input: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(f, "Model: %s/%s\n", data.User, data.ModelName)
	fmt.Fprintf(f, "Rendered: %s\n", filepath.Base(data.OutputPath))
	fmt.Fprintf(f, "Completed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(f, "")
}

// writePipelineSummary outputs the stage timing summary.
func writePipelineSummary(f *os.File, data ReportData) {
	writeSection(f, "Pipeline Summary")

	fmt.Fprintf(f, "Resolve:     %s\n", formatDuration(data.ResolveTime))
	fmt.Fprintf(f, "Analyze:     %s\n", formatDuration(data.AnalyzeTime))

	if data.SynthTime > 0 || data.VerifyTime > 0 {
		fmt.Fprintf(f, "Synthesize:  %s\n", formatDuration(data.SynthTime))
		fmt.Fprintf(f, "Verify:      %s\n", formatDuration(data.VerifyTime))
	} else {
		fmt.Fprintln(f, "Synthesize:  skipped")
		fmt.Fprintln(f, "Verify:      skipped")
	}

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(f, "Total:       %s", formatDuration(totalTime))

	if stream := data.Decision.Stream; stream != nil && stream.Duration > 0 && totalTime > 0 {
		audioDuration := time.Duration(stream.Duration * float64(time.Second))
		rtf := float64(audioDuration) / float64(totalTime)
		fmt.Fprintf(f, " (%.1fx real-time)", rtf)
	}
	fmt.Fprintln(f, "")
	fmt.Fprintln(f, "")
}

// writePitchResolution outputs the decision and its inputs.
func writePitchResolution(f *os.File, data ReportData) {
	writeSection(f, "Pitch Resolution")

	d := data.Decision
	fmt.Fprintf(f, "Shift:      %+d semitones\n", d.Semitones)
	fmt.Fprintf(f, "Provenance: %s\n", d.Provenance)

	switch d.Provenance {
	case engine.ProvenanceExplicitOverride:
		fmt.Fprintln(f, "The shift was supplied on the command line; no analysis ran.")
	case engine.ProvenanceComputed:
		fmt.Fprintf(f, "Estimator:  %s\n", data.Estimator)
		fmt.Fprintf(f, "Source f0:  %s\n", formatMetricWithUnit(d.SourceF0, 1, "Hz"))
		fmt.Fprintf(f, "Target f0:  %s\n", formatMetricWithUnit(d.TargetF0, 1, "Hz"))
	case engine.ProvenanceNoMetadata:
		fmt.Fprintf(f, "Cause:      %s\n", d.Cause)
	case engine.ProvenanceEstimationFailed:
		fmt.Fprintf(f, "Estimator:  %s\n", data.Estimator)
		fmt.Fprintf(f, "Target f0:  %s\n", formatMetricWithUnit(d.TargetF0, 1, "Hz"))
		fmt.Fprintf(f, "Cause:      %s\n", d.Cause)
	}
	fmt.Fprintln(f, "")
}

// writeInputStream outputs the decoded container facts.
func writeInputStream(f *os.File, stream *audio.Metadata) {
	if stream == nil {
		return
	}
	writeSection(f, "Input Stream")
	fmt.Fprintf(f, "Duration:    %s\n", formatDurationHMS(stream.Duration))
	fmt.Fprintf(f, "Sample Rate: %d Hz\n", stream.SampleRate)
	fmt.Fprintf(f, "Channels:    %s\n", channelName(stream.Channels))
	fmt.Fprintf(f, "Format:      %s\n", sampleFormatName(stream))
	fmt.Fprintln(f, "")
}

// writeMeasurementsTable outputs a Source/Rendered comparison of the
// time-domain measurements.
func writeMeasurementsTable(f *os.File, input, rendered *audio.Stats) {
	if input == nil && rendered == nil {
		return
	}
	writeSection(f, "Measurements")

	stat := func(s *audio.Stats, pick func(*audio.Stats) float64) float64 {
		if s == nil {
			return math.NaN()
		}
		return pick(s)
	}
	peak := func(s *audio.Stats) float64 { return s.Peak }
	rms := func(s *audio.Stats) float64 { return s.RMSLevel }
	floor := func(s *audio.Stats) float64 { return s.NoiseFloor }
	dc := func(s *audio.Stats) float64 { return s.DCOffset }
	clip := func(s *audio.Stats) float64 { return s.ClippedRatio * 100 }
	sil := func(s *audio.Stats) float64 { return s.SilenceRatio * 100 }

	table := NewMetricTable()

	table.AddRow("Peak Level", []string{
		formatMetricPeak(stat(input, peak), 1),
		formatMetricPeak(stat(rendered, peak), 1),
	}, "dBFS", "")

	table.AddRow("RMS Level", []string{
		formatMetricDB(stat(input, rms), 1),
		formatMetricDB(stat(rendered, rms), 1),
	}, "dBFS", "")

	table.AddRow("Noise Floor", []string{
		formatMetricDB(stat(input, floor), 1),
		formatMetricDB(stat(rendered, floor), 1),
	}, "dBFS", interpretNoiseFloor(stat(input, floor)))

	table.AddRow("DC Offset", []string{
		formatMetricSigned(stat(input, dc), 4),
		formatMetricSigned(stat(rendered, dc), 4),
	}, "", "")

	clipRatio := func(s *audio.Stats) float64 { return s.ClippedRatio }
	table.AddMetricRow("Clipped Samples",
		stat(input, clip), stat(rendered, clip),
		2, "%", interpretClipping(stat(input, clipRatio)))

	table.AddMetricRow("Silence",
		stat(input, sil), stat(rendered, sil),
		0, "%", "")

	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

// writeRecordingTips outputs the prioritised advice list.
func writeRecordingTips(f *os.File, tips []RecordingTip) {
	if len(tips) == 0 {
		return
	}
	writeSection(f, "Recording Tips")
	for i, tip := range tips {
		fmt.Fprintf(f, "%d. %s\n", i+1, wrapText(tip.Message, 72, "   "))
	}
	fmt.Fprintln(f, "")
}

// formatDuration formats a stage timing for the summary.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}
