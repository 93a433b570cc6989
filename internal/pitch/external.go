package pitch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/linuxmatters/jivepitch/internal/audio"
)

// CommandContour obtains an f0 contour from an external analyzer process.
// The buffer is written to a scratch WAV, the configured command runs with
// the scratch path appended to its arguments, and stdout is parsed as one
// frequency per line (0 for unvoiced frames). The scratch file is removed
// whether or not the analyzer succeeds.
type CommandContour struct {
	Path       string   // analyzer binary
	Args       []string // fixed arguments placed before the audio path
	ScratchDir string   // scratch WAV location (default: os.TempDir)
}

func (c *CommandContour) Name() string {
	return "external:" + filepath.Base(c.Path)
}

func (c *CommandContour) Contour(ctx context.Context, buf audio.Buffer) ([]float64, error) {
	if c.Path == "" {
		return nil, errors.New("external analyzer: no command configured")
	}
	if _, err := exec.LookPath(c.Path); err != nil {
		return nil, fmt.Errorf("external analyzer: %w", err)
	}
	if buf.Empty() {
		return nil, nil
	}

	dir := c.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	scratch := filepath.Join(dir, "jivepitch-f0-"+uuid.NewString()+".wav")
	if err := audio.EncodeFile(scratch, buf.Samples, buf.SampleRate); err != nil {
		return nil, fmt.Errorf("external analyzer: %w", err)
	}
	defer os.Remove(scratch)

	args := append(slices.Clone(c.Args), scratch)
	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("external analyzer %s: %w (%s)", c.Path, err, strings.TrimSpace(stderr.String()))
	}
	return parseContour(stdout.String())
}

// parseContour reads one frequency per non-blank line.
func parseContour(out string) ([]float64, error) {
	var contour []float64
	for i, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("external analyzer: line %d: %q is not a frequency", i+1, line)
		}
		contour = append(contour, v)
	}
	return contour, nil
}
