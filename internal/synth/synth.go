// Package synth invokes the external voice-conversion inferencer and
// verifies that it actually produced a converted take.
package synth

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Inference defaults forwarded to the synthesizer when a job leaves them
// unset.
const (
	DefaultF0Method       = "harvest"
	DefaultIndexRate      = 0.5
	DefaultCrepeHopLength = 128
)

// Job describes one synthesis run. ModelPath and InputPath must already be
// resolved to real files; IndexPath and OutputPath may be empty, in which
// case the synthesizer picks its own.
type Job struct {
	User      string
	ModelName string

	ModelPath  string
	IndexPath  string
	InputPath  string
	OutputPath string

	// Pitch is the shift in semitones applied during conversion.
	Pitch int

	F0Method       string
	IndexRate      float64
	CrepeHopLength int
}

// Synthesizer renders a voice-converted take for a job.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, job Job) error
}

// Command shells out to an inferencer executable. Stdout and Stderr may be
// attached to stream the inferencer's progress; stderr is additionally
// captured so failures carry the synthesizer's own diagnostics.
type Command struct {
	Path   string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

func (c *Command) Name() string {
	if c.Path == "" {
		return "none"
	}
	return filepath.Base(c.Path)
}

func (c *Command) Synthesize(ctx context.Context, job Job) error {
	if c.Path == "" {
		return fmt.Errorf("no synthesizer configured")
	}
	bin, err := exec.LookPath(c.Path)
	if err != nil {
		return fmt.Errorf("synthesizer not found: %w", err)
	}

	var captured bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, c.args(job)...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = &captured
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &captured)
	}

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(captured.String())
		if detail != "" {
			return fmt.Errorf("synthesizer %s failed: %w: %s", c.Name(), err, detail)
		}
		return fmt.Errorf("synthesizer %s failed: %w", c.Name(), err)
	}
	return nil
}

// args lays out the inferencer's flag contract for a job, filling defaults
// for unset tunables.
func (c *Command) args(job Job) []string {
	method := job.F0Method
	if method == "" {
		method = DefaultF0Method
	}
	rate := job.IndexRate
	if rate <= 0 {
		rate = DefaultIndexRate
	}
	hop := job.CrepeHopLength
	if hop <= 0 {
		hop = DefaultCrepeHopLength
	}

	args := []string{
		"--user", job.User,
		"--model_name", job.ModelName,
		"--model", job.ModelPath,
		"--input", job.InputPath,
		"--pitch", strconv.Itoa(job.Pitch),
		"--f0_method", method,
		"--index_rate", strconv.FormatFloat(rate, 'g', -1, 64),
		"--crepe_hop_length", strconv.Itoa(hop),
	}
	if job.OutputPath != "" {
		args = append(args, "--output", job.OutputPath)
	}
	if job.IndexPath != "" {
		args = append(args, "--index", job.IndexPath)
	}
	return append(args, c.Args...)
}

// VerifyOutput confirms the synthesizer wrote a converted file. A missing
// output or one byte-identical to the input means the conversion silently
// fell through.
func VerifyOutput(inputPath, outputPath string) error {
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("synthesis produced no output: %w", err)
	}

	inSum, err := fileMD5(inputPath)
	if err != nil {
		return fmt.Errorf("hash input: %w", err)
	}
	outSum, err := fileMD5(outputPath)
	if err != nil {
		return fmt.Errorf("hash output: %w", err)
	}
	if inSum == outSum {
		return fmt.Errorf("synthesis output %s is byte-identical to the input (no conversion applied)", outputPath)
	}
	return nil
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
