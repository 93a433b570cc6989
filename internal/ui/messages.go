package ui

import (
	"github.com/linuxmatters/jivepitch/internal/engine"
)

// StageStartMsg indicates a pipeline stage has started
type StageStartMsg struct {
	Stage Stage
}

// ResolvedMsg indicates the input and model assets have been located
type ResolvedMsg struct {
	InputPath string
	ModelDir  string
}

// DecisionMsg carries the resolved pitch decision
type DecisionMsg struct {
	Decision  engine.Decision
	Estimator string
}

// SynthesizedMsg indicates the inferencer has produced its output
type SynthesizedMsg struct {
	OutputPath string
}

// PipelineDoneMsg is the terminal message: the run finished, with or
// without an error
type PipelineDoneMsg struct {
	Err error
}
