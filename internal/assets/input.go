package assets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AudioExts lists the extensions recognized as audio inputs, in the order
// they are tried when completing a bare song name.
var AudioExts = []string{".wav", ".mp3", ".flac", ".m4a", ".ogg", ".aac"}

// vocalsFile is the separated vocal stem preferred inside a song folder.
const vocalsFile = "vocals.wav"

// DirectPath accepts inputs that already name an existing file.
type DirectPath struct{}

func (DirectPath) Find(_ context.Context, q Query) (string, bool) {
	if q.Input == "" || !fileExists(q.Input) {
		return "", false
	}
	return q.Input, true
}

func (DirectPath) Describe(q Query) string { return q.Input }

// SongDir looks inside the per-user, per-model song folder. When the folder
// holds no audio yet and a Store is configured, it first syncs the song from
// remote storage; sync failures are logged and resolution carries on with
// whatever is present locally.
type SongDir struct {
	Root   string
	Store  ObjectStore
	Logger *slog.Logger
}

func (s *SongDir) applies(q Query) bool {
	return q.User != "" && q.Model != "" && q.Song != ""
}

func (s *SongDir) dir(q Query) string {
	return filepath.Join(s.Root, q.User, q.Model, q.Song)
}

func (s *SongDir) Find(ctx context.Context, q Query) (string, bool) {
	if !s.applies(q) {
		return "", false
	}
	dir := s.dir(q)

	if s.Store != nil && !hasAudioFiles(dir) {
		if err := SyncSong(ctx, s.Store, dir, q.User, q.Model, q.Song); err != nil {
			s.logger().Warn("remote song sync failed",
				"dir", dir,
				"cause", err.Error())
		}
	}

	// A filename with an audio extension selects that file inside the
	// song folder.
	if q.Input != "" && isAudioExt(q.Input) {
		if cand := filepath.Join(dir, q.Input); fileExists(cand) {
			return cand, true
		}
	}
	if cand := filepath.Join(dir, vocalsFile); fileExists(cand) {
		return cand, true
	}
	return firstAudioFile(dir)
}

func (s *SongDir) Describe(q Query) string {
	if !s.applies(q) {
		return ""
	}
	return fmt.Sprintf("%s (vocals.wav or first audio file)", s.dir(q))
}

func (s *SongDir) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// InputDir resolves names against a flat input folder, completing missing
// extensions against AudioExts.
type InputDir struct {
	Root string
}

func (d InputDir) Find(_ context.Context, q Query) (string, bool) {
	if q.Input == "" {
		return "", false
	}
	cand := filepath.Join(d.Root, q.Input)
	if fileExists(cand) {
		return cand, true
	}
	if filepath.Ext(q.Input) != "" {
		return "", false
	}
	for _, ext := range AudioExts {
		if c := cand + ext; fileExists(c) {
			return c, true
		}
	}
	return "", false
}

func (d InputDir) Describe(q Query) string {
	if q.Input == "" {
		return ""
	}
	cand := filepath.Join(d.Root, q.Input)
	if filepath.Ext(q.Input) == "" {
		return cand + ".(wav|mp3|flac|m4a|ogg|aac)"
	}
	return cand
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isAudioExt(name string) bool {
	return slices.Contains(AudioExts, strings.ToLower(filepath.Ext(name)))
}

func hasAudioFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && isAudioExt(e.Name()) {
			return true
		}
	}
	return false
}

// firstAudioFile picks the lexicographically first audio file in dir,
// matching the order os.ReadDir already guarantees.
func firstAudioFile(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && isAudioExt(e.Name()) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}
