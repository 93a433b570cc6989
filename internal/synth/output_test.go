package synth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLayoutResolveDefault(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	l := Layout{Root: root}

	got, err := l.Resolve("", "alice", "tenor", "/songs/ballad.flac")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "alice", "tenor", "ballad_RVC.wav")
	if got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
	if !isDir(filepath.Dir(got)) {
		t.Error("output directory was not created")
	}
}

func TestLayoutResolveExplicitDir(t *testing.T) {
	l := Layout{Root: "unused"}

	t.Run("existing directory", func(t *testing.T) {
		dir := t.TempDir()
		got, err := l.Resolve(dir, "alice", "tenor", "ballad.wav")
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(dir, "ballad_RVC.wav"); got != want {
			t.Errorf("Resolve = %q, want %q", got, want)
		}
	})

	t.Run("trailing separator creates directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "takes")
		got, err := l.Resolve(dir+string(os.PathSeparator), "alice", "tenor", "ballad.wav")
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(dir, "ballad_RVC.wav"); got != want {
			t.Errorf("Resolve = %q, want %q", got, want)
		}
		if !isDir(dir) {
			t.Error("directory named with trailing separator was not created")
		}
	})
}

func TestLayoutResolveExplicitFile(t *testing.T) {
	l := Layout{Root: "unused"}

	t.Run("verbatim path with parents created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deep", "nested", "take.wav")
		got, err := l.Resolve(path, "alice", "tenor", "ballad.wav")
		if err != nil {
			t.Fatal(err)
		}
		if got != path {
			t.Errorf("Resolve = %q, want %q verbatim", got, path)
		}
		if !isDir(filepath.Dir(path)) {
			t.Error("parent directory was not created")
		}
	})

	t.Run("bare filename kept", func(t *testing.T) {
		got, err := l.Resolve("take.wav", "alice", "tenor", "ballad.wav")
		if err != nil {
			t.Fatal(err)
		}
		if got != "take.wav" {
			t.Errorf("Resolve = %q, want bare filename", got)
		}
	})
}
