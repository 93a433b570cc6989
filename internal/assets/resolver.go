// Package assets locates the audio inputs consumed by a synthesis run.
// Resolution walks an explicit, ordered list of locations so that a miss
// can report exactly where it looked.
package assets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Query names the input the caller asked for. Input may be a full path, a
// filename, or a bare song name; User, Model and Song scope the per-song
// folder lookups and may be empty.
type Query struct {
	Input string
	User  string
	Model string
	Song  string
}

// Resolver tries one strategy for locating the input audio. Find reports
// ok=false when the strategy does not apply or has no match; Describe names
// the location the strategy would search, or "" when it does not apply.
type Resolver interface {
	Find(ctx context.Context, q Query) (path string, ok bool)
	Describe(q Query) string
}

// Chain tries resolvers in order and reports every searched location when
// none of them match.
type Chain []Resolver

func (c Chain) Find(ctx context.Context, q Query) (string, error) {
	tried := make([]string, 0, len(c))
	for _, r := range c {
		if path, ok := r.Find(ctx, q); ok {
			return path, nil
		}
		if d := r.Describe(q); d != "" {
			tried = append(tried, d)
		}
	}
	if len(tried) == 0 {
		return "", fmt.Errorf("input %q not found", q.Input)
	}
	return "", fmt.Errorf("input %q not found (tried %s)", q.Input, strings.Join(tried, ", "))
}

// DefaultChain is the stock resolution order: explicit paths first, then
// the per-song folder (with optional remote sync), then the flat local
// input folder, then the input tree root.
func DefaultChain(inputRoot string, store ObjectStore, logger *slog.Logger) Chain {
	return Chain{
		DirectPath{},
		&SongDir{Root: inputRoot, Store: store, Logger: logger},
		InputDir{Root: "input"},
		InputDir{Root: inputRoot},
	}
}
