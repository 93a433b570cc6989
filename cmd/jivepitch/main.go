package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/linuxmatters/jivepitch/internal/assets"
	"github.com/linuxmatters/jivepitch/internal/audio"
	"github.com/linuxmatters/jivepitch/internal/cli"
	"github.com/linuxmatters/jivepitch/internal/config"
	"github.com/linuxmatters/jivepitch/internal/engine"
	"github.com/linuxmatters/jivepitch/internal/logging"
	"github.com/linuxmatters/jivepitch/internal/mains"
	"github.com/linuxmatters/jivepitch/internal/model"
	"github.com/linuxmatters/jivepitch/internal/pitch"
	"github.com/linuxmatters/jivepitch/internal/synth"
	"github.com/linuxmatters/jivepitch/internal/ui"
)

var (
	version = "0.0.1"
)

// defaultConfigFile is consulted when -c is not given.
const defaultConfigFile = "jivepitch.yaml"

// CLI defines the command-line interface
type CLI struct {
	Version   bool   `short:"v" help:"Show version information"`
	Config    string `short:"c" type:"path" help:"Path to YAML config file (optional)"`
	User      string `help:"Username owning the voice model"`
	ModelName string `help:"Voice model name under the models root"`
	Model     string `type:"path" help:"Model weights path (overrides the standard layout)"`
	Index     string `type:"path" help:"Retrieval index path (overrides discovery)"`
	Output    string `type:"path" help:"Output file or directory"`
	Pitch     *int   `short:"p" help:"Explicit semitone shift (skips pitch analysis)"`
	Estimator string `help:"Pitch estimator: autocorr, yin or external"`
	Logs      bool   `help:"Save a conversion report next to the rendered take"`
	NoUI      bool   `help:"Plain console output instead of the full-screen UI"`
	DryRun    bool   `help:"Resolve assets and decide the shift, skip synthesis"`
	Input     string `arg:"" name:"input" optional:"" help:"Input audio: a path, a filename, or a bare song name"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("jivepitch"),
		kong.Description("Pitch-matched voice conversion runner"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if cliArgs.Input == "" {
		cli.PrintError("No input specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}
	if cliArgs.User == "" || cliArgs.ModelName == "" {
		cli.PrintError("Both --user and --model-name are required")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	cfg, err := loadConfig(cliArgs)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	logger, closeLog := newLogger(cliArgs.NoUI, uuid.NewString())
	defer closeLog()
	slog.SetDefault(logger)

	run := &runner{cli: cliArgs, cfg: cfg, log: logger}

	// Plain mode: run the pipeline inline and print the summary
	if cliArgs.NoUI {
		run.execute(context.Background(), func(tea.Msg) {})
		printPlainResult(run)
		if run.err != nil {
			os.Exit(1)
		}
		return
	}

	// Create the Bubbletea UI model
	tui := ui.NewModel(cliArgs.User, cliArgs.ModelName, cliArgs.Input)

	// Start the TUI
	p := tea.NewProgram(tui, tea.WithAltScreen())

	// Start the pipeline in background; stage messages drive the UI
	go run.execute(context.Background(), func(msg tea.Msg) {
		tui.ProgressChan <- msg
	})

	// Run the program
	final, err := p.Run()
	if err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
	if m, ok := final.(ui.Model); ok && m.Err != nil {
		cli.PrintError(m.Err.Error())
		os.Exit(1)
	}
}

// loadConfig layers the config file under the command-line overrides.
func loadConfig(cliArgs *CLI) (config.Config, error) {
	path := cliArgs.Config
	if path == "" {
		path = defaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if cliArgs.Estimator != "" {
		cfg.Pitch.Estimator = cliArgs.Estimator
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// newLogger builds the run logger. The full-screen UI owns the terminal, so
// log lines go to a debug file; plain runs log to stderr.
func newLogger(noUI bool, runID string) (*slog.Logger, func()) {
	if noUI {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
		return slog.New(h).With("run", runID), func() {}
	}
	f, err := os.Create("jivepitch-debug.log")
	if err != nil {
		return slog.New(slog.DiscardHandler), func() {}
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h).With("run", runID), func() { f.Close() }
}

// printPlainResult writes the console summary for --no-ui runs.
func printPlainResult(run *runner) {
	if run.decided {
		logging.DisplayDecision(os.Stdout, run.inputPath, run.decision, run.estimator, run.stats, run.tips)
	}
	if run.err != nil {
		cli.PrintError(run.err.Error())
		return
	}
	if run.outputPath != "" {
		fmt.Printf("\nRendered take: %s\n", run.outputPath)
	}
}

// runner drives the pipeline stages and collects what the report needs.
type runner struct {
	cli *CLI
	cfg config.Config
	log *slog.Logger

	// Filled as stages complete
	inputPath  string
	modelPath  string
	indexPath  string
	outputPath string
	meta       *model.Metadata
	decision   engine.Decision
	decided    bool
	estimator  string
	stats      *audio.Stats
	tips       []logging.RecordingTip

	startTime   time.Time
	resolveTime time.Duration
	analyzeTime time.Duration
	synthTime   time.Duration
	verifyTime  time.Duration

	err error
}

// execute runs the pipeline to completion and emits the terminal message.
// The UI learns the outcome from the message stream; plain callers read the
// runner fields afterwards.
func (r *runner) execute(ctx context.Context, send func(tea.Msg)) {
	r.startTime = time.Now()
	r.err = r.run(ctx, send)
	send(ui.PipelineDoneMsg{Err: r.err})
}

func (r *runner) run(ctx context.Context, send func(tea.Msg)) error {
	// Stage 1: locate input, model and metadata
	send(ui.StageStartMsg{Stage: ui.StageResolve})
	stageStart := time.Now()
	if err := r.resolveAssets(ctx); err != nil {
		return err
	}
	r.resolveTime = time.Since(stageStart)
	send(ui.ResolvedMsg{InputPath: r.inputPath, ModelDir: filepath.Dir(r.modelPath)})

	// Stage 2: decide the semitone shift
	send(ui.StageStartMsg{Stage: ui.StageAnalyze})
	stageStart = time.Now()
	if err := r.analyze(ctx); err != nil {
		return err
	}
	r.analyzeTime = time.Since(stageStart)
	send(ui.DecisionMsg{Decision: r.decision, Estimator: r.estimator})

	if r.cli.DryRun {
		r.log.Info("dry run, skipping synthesis",
			"semitones", r.decision.Semitones,
			"provenance", string(r.decision.Provenance))
		if r.cli.Logs {
			r.log.Warn("no report for dry runs (nothing rendered to write it next to)")
		}
		return nil
	}

	// Stage 3: render the converted take
	send(ui.StageStartMsg{Stage: ui.StageSynthesize})
	stageStart = time.Now()
	if err := r.synthesize(ctx); err != nil {
		return err
	}
	r.synthTime = time.Since(stageStart)
	send(ui.SynthesizedMsg{OutputPath: r.outputPath})

	// Stage 4: confirm a conversion actually happened
	send(ui.StageStartMsg{Stage: ui.StageVerify})
	stageStart = time.Now()
	if err := synth.VerifyOutput(r.inputPath, r.outputPath); err != nil {
		return err
	}
	r.verifyTime = time.Since(stageStart)

	if r.cli.Logs {
		r.writeReport()
	}
	return nil
}

// resolveAssets locates the input audio and the model files. Failures here
// are caller-input errors: the pipeline refuses to start rather than degrade.
func (r *runner) resolveAssets(ctx context.Context) error {
	var store assets.ObjectStore
	if s3, ok := assets.S3FromEnv(); ok {
		store = s3
		r.log.Debug("remote input sync enabled")
	}
	chain := assets.DefaultChain(r.cfg.Paths.InputRoot, store, r.log)

	inputPath, err := chain.Find(ctx, assets.Query{
		Input: r.cli.Input,
		User:  r.cli.User,
		Model: r.cli.ModelName,
		Song:  r.cli.Input,
	})
	if err != nil {
		return err
	}
	r.inputPath = inputPath

	layout := model.Layout{Root: r.cfg.Paths.ModelsRoot}
	r.modelPath = r.cli.Model
	if r.modelPath == "" {
		r.modelPath = layout.Weights(r.cli.User, r.cli.ModelName)
	}
	if _, err := os.Stat(r.modelPath); err != nil {
		return fmt.Errorf("model weights not found: %w", err)
	}

	r.indexPath = r.cli.Index
	if r.indexPath == "" {
		r.indexPath = model.ResolveIndex(filepath.Dir(r.modelPath))
	}

	meta, ok, err := model.Load(model.MetaPath(r.modelPath))
	if err != nil {
		r.log.Warn("model metadata unreadable", "cause", err.Error())
	}
	if ok {
		r.meta = &meta
	}

	r.log.Info("assets resolved",
		"input", r.inputPath,
		"model", r.modelPath,
		"index", r.indexPath,
		"metadata", ok)
	return nil
}

// analyze resolves the pitch decision and gathers the advisory measurements.
func (r *runner) analyze(ctx context.Context) error {
	est, err := buildEstimator(r.cfg)
	if err != nil {
		return err
	}
	conv := &audio.Converter{FFmpegPath: r.cfg.Tools.FFmpeg, ScratchDir: r.cfg.Paths.ScratchDir}
	eng := engine.New(engine.Config{
		SingingOffsetSemitones: r.cfg.Pitch.SingingOffsetSemitones,
		Estimator:              est,
		Converter:              conv,
		Logger:                 r.log,
	})
	r.estimator = eng.EstimatorName()

	r.decision = eng.Resolve(ctx, engine.Request{
		AudioPath: r.inputPath,
		Metadata:  r.meta,
		Override:  r.cli.Pitch,
	})
	r.decided = true

	// Measurements feed the report and the tips, never the decision. The
	// override fast path stays free of decoding.
	if r.decision.Provenance != engine.ProvenanceExplicitOverride {
		r.stats = measureAudio(ctx, conv, r.inputPath)
	}
	r.tips = logging.GenerateRecordingTips(&logging.Diagnosis{
		Decision: r.decision,
		Stats:    r.stats,
		MainsHz:  mains.Frequency(),
	})
	return nil
}

// synthesize invokes the external inferencer with the resolved decision.
func (r *runner) synthesize(ctx context.Context) error {
	outPath, err := synth.Layout{Root: r.cfg.Paths.OutputRoot}.Resolve(
		r.cli.Output, r.cli.User, r.cli.ModelName, r.inputPath)
	if err != nil {
		return err
	}
	r.outputPath = outPath

	syn := &synth.Command{Path: r.cfg.Tools.Inferencer}
	r.log.Info("invoking synthesizer",
		"synthesizer", syn.Name(),
		"semitones", r.decision.Semitones,
		"output", outPath)
	return syn.Synthesize(ctx, synth.Job{
		User:           r.cli.User,
		ModelName:      r.cli.ModelName,
		ModelPath:      r.modelPath,
		IndexPath:      r.indexPath,
		InputPath:      r.inputPath,
		OutputPath:     outPath,
		Pitch:          r.decision.Semitones,
		F0Method:       r.cfg.Synth.F0Method,
		IndexRate:      r.cfg.Synth.IndexRate,
		CrepeHopLength: r.cfg.Synth.CrepeHopLength,
	})
}

// writeReport saves the conversion report next to the rendered take.
func (r *runner) writeReport() {
	data := logging.ReportData{
		User:        r.cli.User,
		ModelName:   r.cli.ModelName,
		InputPath:   r.inputPath,
		OutputPath:  r.outputPath,
		StartTime:   r.startTime,
		EndTime:     time.Now(),
		ResolveTime: r.resolveTime,
		AnalyzeTime: r.analyzeTime,
		SynthTime:   r.synthTime,
		VerifyTime:  r.verifyTime,
		Decision:    r.decision,
		Estimator:   r.estimator,
		InputStats:  r.stats,
		Tips:        r.tips,
	}
	if buf, _, err := audio.DecodeFile(r.outputPath); err == nil {
		data.RenderedStats = audio.Analyze(buf)
	}
	if err := logging.GenerateReport(data); err != nil {
		r.log.Warn("report generation failed", "cause", err.Error())
	}
}

// buildEstimator maps the configured estimator name onto its implementation.
func buildEstimator(cfg config.Config) (pitch.Estimator, error) {
	switch cfg.Pitch.Estimator {
	case config.EstimatorAutocorr:
		return &pitch.Autocorr{FMin: cfg.Pitch.FMinHz, FMax: cfg.Pitch.FMaxHz}, nil
	case config.EstimatorYIN:
		return pitch.NewHighPrecision(pitch.NewYIN()), nil
	case config.EstimatorExternal:
		return pitch.NewHighPrecision(&pitch.CommandContour{
			Path:       cfg.Tools.Analyzer,
			Args:       cfg.Tools.AnalyzerArgs,
			ScratchDir: cfg.Paths.ScratchDir,
		}), nil
	default:
		return nil, fmt.Errorf("unknown estimator %q", cfg.Pitch.Estimator)
	}
}

// measureAudio decodes a file for the advisory measurements. Returns nil
// when anything fails: a missing measurement only costs a report row.
func measureAudio(ctx context.Context, conv *audio.Converter, path string) *audio.Stats {
	wavPath, cleanup, err := conv.ToWAV(ctx, path)
	if err != nil {
		return nil
	}
	defer cleanup()
	buf, _, err := audio.DecodeFile(wavPath)
	if err != nil {
		return nil
	}
	return audio.Analyze(buf)
}
