package srt

import (
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "00:00:00,000"},
		{3.5, "00:00:03,500"},
		{61.25, "00:01:01,250"},
		{3661.007, "01:01:01,007"},
		{90000, "25:00:00,000"},
		{59.9996, "00:01:00,000"},
		{-4, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.input); got != tt.expected {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"00:00:01,500", 1.5, false},
		{"00:00:01.500", 1.5, false},
		{" 1:02:03,004 ", 3723.004, false},
		{"100:00:00,000", 360000, false},
		{"", 0, true},
		{"00:01,000", 0, true},
		{"aa:bb:cc,ddd", 0, true},
		{"00:61:00,000", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if !approx(got, tt.expected) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

const wellFormed = "1\n00:00:01,000 --> 00:00:02,500\nHello there.\n你好。\n\n2\n00:00:03,000 --> 00:00:04,000\nSecond line\n\n"

func TestParseAndFormatRoundTrip(t *testing.T) {
	track, report := Parse([]byte(wellFormed))
	if !report.Clean() || report.Blocks != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	want := Track{
		{Index: 1, Start: 1, End: 2.5, Lines: []string{"Hello there.", "你好。"}},
		{Index: 2, Start: 3, End: 4, Lines: []string{"Second line"}},
	}
	if !reflect.DeepEqual(track, want) {
		t.Fatalf("got %+v want %+v", track, want)
	}
	if got := string(Format(track)); got != wellFormed {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, wellFormed)
	}
}

func TestRoundTripBeyondHundredHours(t *testing.T) {
	in := Track{{Index: 1, Start: 360000, End: 360001.5, Lines: []string{"Late"}}}
	data := Format(in)
	if !strings.Contains(string(data), "100:00:00,000 --> 100:00:01,500") {
		t.Fatalf("unexpected timing line in %q", data)
	}
	track, report := Parse(data)
	if !report.Clean() || len(track) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if track[0].Start != 360000 || track[0].End != 360001.5 {
		t.Fatalf("got start=%v end=%v", track[0].Start, track[0].End)
	}
	if got := string(Format(track)); got != string(data) {
		t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, data)
	}
}

func TestFormatRenumbers(t *testing.T) {
	track := Track{
		{Index: 7, Start: 0, End: 1, Lines: []string{"a"}},
		{Index: 3, Start: 1, End: 2, Lines: []string{"b"}},
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\na\n\n2\n00:00:01,000 --> 00:00:02,000\nb\n\n"
	if got := string(Format(track)); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if len(Format(nil)) != 0 {
		t.Fatal("empty track should format to nothing")
	}
}

func TestParseToleratesBOMAndCRLF(t *testing.T) {
	data := "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nHi\r\n\r\n\r\n2\r\n00:00:02,000 --> 00:00:03,000\r\nThere\r\n"
	track, report := Parse([]byte(data))
	if report.Blocks != 2 || !report.Clean() {
		t.Fatalf("unexpected report: %+v", report)
	}
	if track[0].Index != 1 || track[0].Lines[0] != "Hi" || track[1].Lines[0] != "There" {
		t.Fatalf("unexpected track: %+v", track)
	}
}

func TestParseMissingIndexUsesCounter(t *testing.T) {
	data := "00:00:01,000 --> 00:00:02,000\nfirst\n\n00:00:03,000 --> 00:00:04,000\nsecond\n"
	track, _ := Parse([]byte(data))
	if len(track) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(track))
	}
	if track[0].Index != 1 || track[1].Index != 2 {
		t.Fatalf("expected inferred indices 1,2 got %d,%d", track[0].Index, track[1].Index)
	}
}

func TestParseScansForTimingLine(t *testing.T) {
	data := "junk\nmore junk\n00:00:01,000 --> 00:00:02,000\ntext"
	track, report := Parse([]byte(data))
	if report.Blocks != 1 {
		t.Fatalf("expected 1 block, got %+v", report)
	}
	if !reflect.DeepEqual(track[0].Lines, []string{"text"}) {
		t.Fatalf("preceding lines should be discarded, got %q", track[0].Lines)
	}
}

func TestParseSplitsTextMergedIntoTimingLine(t *testing.T) {
	data := "1\n00:00:01,000 --> 00:00:10,000Hello\nWorld\n"
	track, _ := Parse([]byte(data))
	if len(track) != 1 {
		t.Fatalf("expected 1 block, got %d", len(track))
	}
	if track[0].End != 10 {
		t.Fatalf("end = %v want 10", track[0].End)
	}
	if !reflect.DeepEqual(track[0].Lines, []string{"Hello", "World"}) {
		t.Fatalf("got %q", track[0].Lines)
	}
}

func TestParseSkipsBlocksWithoutTiming(t *testing.T) {
	data := "1\nno timing here\nstill none\n\n2\n00:00:01,000 --> 00:00:02,000\nkept\n\nlonely\n"
	track, report := Parse([]byte(data))
	if len(track) != 1 || track[0].Lines[0] != "kept" {
		t.Fatalf("unexpected track: %+v", track)
	}
	if len(report.Skipped) != 2 {
		t.Fatalf("expected 2 skipped blocks, got %+v", report.Skipped)
	}
	if report.Skipped[0].Reason != ReasonNoTimestamp || report.Skipped[0].Ordinal != 1 {
		t.Fatalf("unexpected first skip: %+v", report.Skipped[0])
	}
	if report.Skipped[1].Reason != ReasonTooShort || report.Skipped[1].Ordinal != 3 {
		t.Fatalf("unexpected second skip: %+v", report.Skipped[1])
	}
}

func TestParseKeepsMalformedTimestampWithZeroTiming(t *testing.T) {
	data := "1\n00:00:xx,000 --> 00:00:02,000\nbroken\n"
	track, report := Parse([]byte(data))
	if len(track) != 1 {
		t.Fatalf("malformed block should be retained, got %d blocks", len(track))
	}
	if track[0].Start != 0 || track[0].End != 0 {
		t.Fatalf("expected zero timing, got %v-%v", track[0].Start, track[0].End)
	}
	if len(report.Malformed) != 1 || report.Malformed[0].Reason != ReasonMalformedTimestamp {
		t.Fatalf("expected malformed issue, got %+v", report.Malformed)
	}
}

func TestParseNormalizesToNFC(t *testing.T) {
	data := "1\n00:00:01,000 --> 00:00:02,000\ncafe\u0301\n"
	track, _ := Parse([]byte(data))
	if track[0].Lines[0] != "caf\u00e9" {
		t.Fatalf("expected NFC text, got %q", track[0].Lines[0])
	}
}

func TestParseEmpty(t *testing.T) {
	track, report := Parse([]byte("  \n\n"))
	if len(track) != 0 || report.Blocks != 0 {
		t.Fatalf("expected empty result, got %+v %+v", track, report)
	}
}

func TestWriteFileAndParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.srt")
	track := Track{{Start: 0.5, End: 1.25, Lines: []string{Sentinel, "Hello"}}}
	if err := WriteFile(path, track); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, report, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if report.Blocks != 1 || got[0].Index != 1 || !got[0].HasSentinel() {
		t.Fatalf("unexpected parse result: %+v", got)
	}
	if _, _, err := ParseFile(filepath.Join(t.TempDir(), "missing.srt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestTrackHelpers(t *testing.T) {
	track := Track{
		{Index: 4, Start: 2, End: 3, Lines: []string{"a", Sentinel}},
		{Index: 9, Start: 3, End: 7.5, Lines: []string{"b"}},
	}
	clone := track.Clone()
	clone[0].Lines[0] = "changed"
	if track[0].Lines[0] != "a" {
		t.Fatal("Clone must not share line storage")
	}
	if !approx(track.Duration(), 5.5) {
		t.Fatalf("duration = %v want 5.5", track.Duration())
	}
	if track.CountSentinels() != 1 {
		t.Fatalf("CountSentinels = %d want 1", track.CountSentinels())
	}
	clone.Renumber()
	if clone[0].Index != 1 || clone[1].Index != 2 {
		t.Fatalf("Renumber failed: %+v", clone)
	}
	if (Block{Start: 5, End: 1}).Duration() != 0 {
		t.Fatal("negative duration should clamp to 0")
	}
	if Track(nil).Duration() != 0 {
		t.Fatal("empty track duration should be 0")
	}
}
