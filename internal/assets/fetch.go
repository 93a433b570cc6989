package assets

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// remoteInputPrefix is the top-level folder in the bucket; keys below it
// mirror the local input tree.
const remoteInputPrefix = "input"

// SyncSong mirrors the remote song folder into destDir, preserving any
// subfolders below the song prefix. An empty listing is not an error: the
// caller decides what a still-empty folder means.
func SyncSong(ctx context.Context, store ObjectStore, destDir, user, model, song string) error {
	prefix := path.Join(remoteInputPrefix, user, model, song) + "/"
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("sync %s: %w", prefix, err)
	}
	for _, key := range keys {
		rel := strings.TrimPrefix(key, prefix)
		if rel == "" || strings.HasSuffix(key, "/") {
			continue
		}
		dest := filepath.Join(destDir, filepath.FromSlash(rel))
		if dir := filepath.Dir(dest); dir != destDir {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("sync %s: %w", prefix, err)
			}
		}
		if err := store.Fetch(ctx, key, dest); err != nil {
			return err
		}
	}
	return nil
}
