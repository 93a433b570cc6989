package synth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// outputSuffix marks rendered takes so they never collide with their source
// file when both land in the same directory.
const outputSuffix = "_RVC"

// Layout resolves where a rendered take is written. Root anchors the
// per-user, per-model output tree used when the caller gives no explicit
// destination.
type Layout struct {
	Root string
}

// Resolve picks the output path for a job and creates its directory.
//
// An explicit destination naming a directory (existing, or spelled with a
// trailing separator) gets an auto-named file inside it; any other explicit
// destination is taken verbatim. With no explicit destination the take
// lands under Root/<user>/<model>/.
func (l Layout) Resolve(explicit, user, model, inputPath string) (string, error) {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := stem + outputSuffix + ".wav"

	if explicit != "" {
		if isDir(explicit) || strings.HasSuffix(explicit, string(os.PathSeparator)) {
			dir := filepath.Clean(explicit)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("create output directory: %w", err)
			}
			return filepath.Join(dir, name), nil
		}
		if dir := filepath.Dir(explicit); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("create output directory: %w", err)
			}
		}
		return explicit, nil
	}

	dir := filepath.Join(l.Root, user, model)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
