package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Converter turns arbitrary audio containers into scratch WAV files the
// decoder can read. The zero value uses the ffmpeg binary from PATH.
type Converter struct {
	// FFmpegPath overrides the ffmpeg binary location.
	FFmpegPath string
	// ScratchDir overrides where scratch files are created (default: os.TempDir).
	ScratchDir string
}

// ToWAV returns a WAV path for src and a cleanup func that removes any
// scratch file it created. WAV inputs pass through untouched with a no-op
// cleanup. The cleanup must run on every exit path before the caller reports
// its result.
func (c *Converter) ToWAV(ctx context.Context, src string) (string, func(), error) {
	if strings.EqualFold(filepath.Ext(src), ".wav") {
		return src, func() {}, nil
	}

	bin := c.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return "", func() {}, fmt.Errorf("convert %s: ffmpeg not available: %w", src, err)
	}

	dir := c.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	scratch := filepath.Join(dir, "jivepitch-"+uuid.NewString()+".wav")
	cleanup := func() { os.Remove(scratch) }

	cmd := exec.CommandContext(ctx, bin,
		"-y",
		"-i", src,
		"-acodec", "pcm_s16le",
		"-loglevel", "error",
		scratch,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("convert %s: ffmpeg: %w (%s)", src, err, strings.TrimSpace(string(out)))
	}
	return scratch, cleanup, nil
}
