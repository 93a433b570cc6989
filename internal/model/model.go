// Package model locates trained voice models on disk and reads their
// companion metadata descriptors.
package model

import (
	"os"
	"path/filepath"
	"strings"
)

// Standard filenames inside a model directory.
const (
	WeightsFile = "model.pth"       // network weights
	MetaFile    = "model.meta.json" // companion descriptor
)

// indexCandidates are the preferred retrieval-index filenames, in order.
var indexCandidates = [...]string{"model.index.index", "model.index"}

// Layout addresses models stored as <Root>/<user>/<name>/.
type Layout struct {
	Root string // model tree root, e.g. ./data/models
}

// Dir returns the directory holding one model.
func (l Layout) Dir(user, name string) string {
	return filepath.Join(l.Root, user, name)
}

// Weights returns the weights path of one model.
func (l Layout) Weights(user, name string) string {
	return filepath.Join(l.Dir(user, name), WeightsFile)
}

// MetaPath returns the descriptor path that sits next to a weights file.
func MetaPath(weightsPath string) string {
	return filepath.Join(filepath.Dir(weightsPath), MetaFile)
}

// ResolveIndex returns the retrieval index for a model directory: the
// standard names first, then the first *.index by name. Synthesis may run
// without an index, so every failure mode resolves to "".
func ResolveIndex(dir string) string {
	for _, name := range indexCandidates {
		cand := filepath.Join(dir, name)
		if _, err := os.Stat(cand); err == nil {
			return cand
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".index") {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}
