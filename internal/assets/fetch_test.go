package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSyncSongMirrorsFolder(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{
		"input/alice/tenor/ballad/vocals.wav":        []byte("stem"),
		"input/alice/tenor/ballad/stems/backing.wav": []byte("backing"),
		"input/alice/tenor/other/vocals.wav":         []byte("unrelated"),
	}}
	dest := filepath.Join(t.TempDir(), "ballad")

	if err := SyncSong(context.Background(), store, dest, "alice", "tenor", "ballad"); err != nil {
		t.Fatal(err)
	}

	for _, rel := range []string{"vocals.wav", filepath.Join("stems", "backing.wav")} {
		if _, err := os.Stat(filepath.Join(dest, rel)); err != nil {
			t.Errorf("synced file %s missing: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "..", "other")); err == nil {
		t.Error("objects outside the song prefix were fetched")
	}
}

func TestSyncSongEmptyListing(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{}}
	dest := filepath.Join(t.TempDir(), "ballad")

	if err := SyncSong(context.Background(), store, dest, "alice", "tenor", "ballad"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dest); err == nil {
		t.Error("destination created despite empty listing")
	}
}

func TestSyncSongFetchError(t *testing.T) {
	store := &fakeStore{
		objects:  map[string][]byte{"input/alice/tenor/ballad/vocals.wav": []byte("stem")},
		fetchErr: errors.New("download interrupted"),
	}
	dest := filepath.Join(t.TempDir(), "ballad")

	if err := SyncSong(context.Background(), store, dest, "alice", "tenor", "ballad"); err == nil {
		t.Error("expected fetch error to propagate")
	}
}
