package audio

import (
	"context"
	"testing"
)

func TestConverterWAVPassthrough(t *testing.T) {
	// WAV inputs skip conversion entirely, so no ffmpeg lookup happens and
	// the original path comes back with a no-op cleanup.
	c := &Converter{FFmpegPath: "/nonexistent/ffmpeg"}

	for _, src := range []string{"/missing/dir/vocals.wav", "/missing/dir/VOCALS.WAV"} {
		got, cleanup, err := c.ToWAV(context.Background(), src)
		if err != nil {
			t.Fatalf("ToWAV(%s) failed: %v", src, err)
		}
		if got != src {
			t.Errorf("ToWAV(%s) = %s, want passthrough", src, got)
		}
		cleanup()
	}
}

func TestConverterMissingBinary(t *testing.T) {
	c := &Converter{FFmpegPath: "/nonexistent/jivepitch-test-ffmpeg"}

	_, cleanup, err := c.ToWAV(context.Background(), "/missing/dir/song.mp3")
	if err == nil {
		t.Fatal("expected an error when ffmpeg is unavailable")
	}
	cleanup()
}
