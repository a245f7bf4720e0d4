package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autosub/internal/srt"
)

// WriteFile writes body to path, creating parent directories.
func WriteFile(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTrack writes track to path as SubRip.
func WriteTrack(t testing.TB, path string, track srt.Track) {
	t.Helper()
	if err := srt.WriteFile(path, track); err != nil {
		t.Fatalf("write track %s: %v", path, err)
	}
}

// ReadTrack parses the SubRip file at path and fails the test on error.
func ReadTrack(t testing.TB, path string) srt.Track {
	t.Helper()
	track, _, err := srt.ParseFile(path)
	if err != nil {
		t.Fatalf("read track %s: %v", path, err)
	}
	return track
}

// Track builds a track of consecutive two-second blocks, one per entry in
// lines. Entries containing "|" become multi-line blocks.
func Track(lines ...string) srt.Track {
	track := make(srt.Track, 0, len(lines))
	for i, text := range lines {
		start := float64(i * 2)
		track = append(track, srt.Block{
			Index: i + 1,
			Start: start,
			End:   start + 2,
			Lines: strings.Split(text, "|"),
		})
	}
	return track
}
