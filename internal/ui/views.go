package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Spinner frames for indeterminate progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// renderPipelineView renders the main pipeline view
func renderPipelineView(m Model) string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	// Stage list
	b.WriteString(renderStageList(m))

	// Decision box once the analysis has landed
	if m.Decision != nil {
		b.WriteString("\n")
		b.WriteString(renderDecisionBox(m))
	}

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A40000")).
		Render("Jivepitch 🕺 - Pitch-Matched Voice Conversion")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Model %s/%s · Input %s", m.User, m.ModelName, m.Song))

	return title + "\n" + subtitle
}

// renderStageList renders the pipeline stages with their status
func renderStageList(m Model) string {
	var b strings.Builder

	for i := Stage(0); i < numStages; i++ {
		b.WriteString(renderStageEntry(m, i))
		b.WriteString("\n")
	}

	return b.String()
}

// renderStageEntry renders a single pipeline stage line
func renderStageEntry(m Model, s Stage) string {
	info := m.Stages[s]
	name := stageNames[s]

	switch info.Status {
	case StatusDone:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		line := fmt.Sprintf(" %s %s [%s]", icon, name, formatElapsed(info.Elapsed))
		if info.Detail != "" {
			line += "\n   " + lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(info.Detail)
		}
		return line

	case StatusRunning:
		spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).
			Render(spinnerFrames[m.spinnerIndex])
		return fmt.Sprintf(" %s %s... [%s]", spinner, name, formatElapsed(info.Elapsed))

	case StatusFailed:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s", icon, name)

	case StatusSkipped:
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
		return fmt.Sprintf(" %s %s", style.Render("-"), style.Render(name+" (skipped)"))

	default:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s", icon, name)
	}
}

// renderDecisionBox renders the resolved pitch decision for the run
func renderDecisionBox(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#A40000")).
		Padding(0, 1).
		Width(60)

	d := m.Decision
	var content strings.Builder

	content.WriteString(fmt.Sprintf("Pitch shift: %+d semitones\n", d.Semitones))
	content.WriteString(fmt.Sprintf("Provenance:  %s\n", d.Provenance))

	if d.SourceF0 > 0 {
		content.WriteString(fmt.Sprintf("Source f0:   %.1f Hz (%s)\n", d.SourceF0, m.Estimator))
	}
	if d.TargetF0 > 0 {
		content.WriteString(fmt.Sprintf("Target f0:   %.1f Hz\n", d.TargetF0))
	}
	if d.Cause != "" {
		content.WriteString(fmt.Sprintf("Cause:       %s\n", d.Cause))
	}

	return box.Render(strings.TrimRight(content.String(), "\n"))
}

// renderCompletionSummary renders the final summary once the run is done
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	if m.Err != nil {
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A40000")).
			Render("✗ Conversion Failed")
		b.WriteString(header)
		b.WriteString("\n\n")
		b.WriteString(renderStageList(m))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Error: %v\n", m.Err))
		return b.String()
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Conversion Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(renderStageList(m))

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")

	if m.Decision != nil {
		d := m.Decision
		if d.SourceF0 > 0 {
			b.WriteString(fmt.Sprintf("Shift: %+d st | Source: %.1f Hz → Target: %.1f Hz (%s)\n",
				d.Semitones, d.SourceF0, d.TargetF0, d.Provenance))
		} else {
			b.WriteString(fmt.Sprintf("Shift: %+d st (%s)\n", d.Semitones, d.Provenance))
		}
	}
	if m.OutputPath != "" {
		b.WriteString(fmt.Sprintf("Rendered take: %s\n", filepath.Base(m.OutputPath)))
		b.WriteString(fmt.Sprintf("Saved to: %s\n", filepath.Dir(m.OutputPath)))
	}

	return b.String()
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
