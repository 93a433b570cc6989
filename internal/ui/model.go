// Package ui provides the Bubbletea terminal user interface for jivepitch
package ui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/jivepitch/internal/engine"
)

var debugLog *os.File

func init() {
	debugLog, _ = os.OpenFile("jivepitch-ui-debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func log(format string, args ...interface{}) {
	if debugLog != nil {
		fmt.Fprintf(debugLog, format+"\n", args...)
	}
}

// Stage identifies one step of the conversion pipeline
type Stage int

const (
	StageResolve Stage = iota
	StageAnalyze
	StageSynthesize
	StageVerify
	numStages
)

// stageNames are the display labels, indexed by Stage
var stageNames = [numStages]string{
	"Resolving input",
	"Analyzing pitch",
	"Synthesizing",
	"Verifying output",
}

// StageStatus represents the state of a single pipeline stage
type StageStatus int

const (
	StatusPending StageStatus = iota
	StatusRunning
	StatusDone
	StatusFailed
	StatusSkipped
)

// StageInfo tracks progress for a single stage
type StageInfo struct {
	Status    StageStatus
	Detail    string // one-line result shown once the stage is done
	StartTime time.Time
	Elapsed   time.Duration
}

// Model is the Bubbletea model for the conversion pipeline UI
type Model struct {
	// Run identity
	User      string
	ModelName string
	Song      string

	// Stage tracking
	Stages  [numStages]StageInfo
	Current Stage

	// Results as they arrive
	InputPath  string
	OutputPath string
	Decision   *engine.Decision
	Estimator  string
	Err        error

	// Global state
	StartTime time.Time
	Done      bool

	// Spinner state
	spinnerIndex int

	// Channel for receiving progress updates from the pipeline
	ProgressChan chan tea.Msg

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model for one conversion run
func NewModel(user, modelName, song string) Model {
	return Model{
		User:         user,
		ModelName:    modelName,
		Song:         song,
		StartTime:    time.Now(),
		ProgressChan: make(chan tea.Msg, 100), // Buffered channel
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForProgress(m.ProgressChan), tickCmd())
}

// tickMsg is sent for spinner/timer animation
type tickMsg time.Time

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		log("[DEBUG] Window size: %dx%d", m.Width, m.Height)

	case tickMsg:
		if !m.Done {
			// Advance spinner and refresh the running stage's clock
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
			if info := &m.Stages[m.Current]; info.Status == StatusRunning {
				info.Elapsed = time.Since(info.StartTime)
			}
			return m, tickCmd()
		}
		return m, nil

	case StageStartMsg:
		log("[DEBUG] StageStartMsg received: stage=%d", msg.Stage)
		m.Current = msg.Stage
		m.Stages[msg.Stage].Status = StatusRunning
		m.Stages[msg.Stage].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case ResolvedMsg:
		log("[DEBUG] ResolvedMsg received: input=%s", msg.InputPath)
		m.InputPath = msg.InputPath
		m.completeStage(StageResolve, msg.InputPath)
		return m, waitForProgress(m.ProgressChan)

	case DecisionMsg:
		log("[DEBUG] DecisionMsg received: %d st via %s", msg.Decision.Semitones, msg.Decision.Provenance)
		d := msg.Decision
		m.Decision = &d
		m.Estimator = msg.Estimator
		m.completeStage(StageAnalyze, fmt.Sprintf("%+d semitones (%s)", d.Semitones, d.Provenance))
		return m, waitForProgress(m.ProgressChan)

	case SynthesizedMsg:
		log("[DEBUG] SynthesizedMsg received: output=%s", msg.OutputPath)
		m.OutputPath = msg.OutputPath
		m.completeStage(StageSynthesize, msg.OutputPath)
		return m, waitForProgress(m.ProgressChan)

	case PipelineDoneMsg:
		log("[DEBUG] PipelineDoneMsg received: err=%v", msg.Err)
		m.Err = msg.Err
		if msg.Err != nil {
			m.Stages[m.Current].Status = StatusFailed
			m.Stages[m.Current].Elapsed = time.Since(m.Stages[m.Current].StartTime)
		} else {
			// A clean finish marks whatever never ran as skipped (dry runs
			// stop after analysis)
			for i := range m.Stages {
				switch m.Stages[i].Status {
				case StatusRunning:
					m.completeStage(Stage(i), m.Stages[i].Detail)
				case StatusPending:
					m.Stages[i].Status = StatusSkipped
				}
			}
		}
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// completeStage marks a stage done and records its result line
func (m *Model) completeStage(s Stage, detail string) {
	info := &m.Stages[s]
	info.Status = StatusDone
	info.Detail = detail
	info.Elapsed = time.Since(info.StartTime)
}

// View renders the UI
func (m Model) View() string {
	// Debug: Show basic info even before window size is set
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nModel: %s/%s\n", m.User, m.ModelName)
	}

	// Build the view based on current state
	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderPipelineView(m)
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
