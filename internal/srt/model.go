package srt

import "strings"

// Sentinel marks a block whose translation is missing. It is never valid
// subtitle text.
const Sentinel = "[UNTRANSLATED]"

// Word is one recognized word with its timing in seconds.
type Word struct {
	Start float64
	End   float64
	Text  string
}

// Duration returns End-Start, never negative.
func (w Word) Duration() float64 {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start
}

// Block is one subtitle entry. Lines are stored in display order.
type Block struct {
	Index int
	Start float64
	End   float64
	Lines []string
}

// Duration returns End-Start, never negative.
func (b Block) Duration() float64 {
	if b.End < b.Start {
		return 0
	}
	return b.End - b.Start
}

// Text joins the block lines with single spaces.
func (b Block) Text() string {
	return strings.Join(b.Lines, " ")
}

// HasSentinel reports whether any line is the untranslated marker.
func (b Block) HasSentinel() bool {
	for _, line := range b.Lines {
		if strings.Contains(line, Sentinel) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no line storage with b.
func (b Block) Clone() Block {
	b.Lines = append([]string(nil), b.Lines...)
	return b
}

// Track is an ordered list of blocks.
type Track []Block

// Clone deep-copies the track.
func (t Track) Clone() Track {
	if t == nil {
		return nil
	}
	out := make(Track, len(t))
	for i, b := range t {
		out[i] = b.Clone()
	}
	return out
}

// Duration spans from the first block start to the last block end.
func (t Track) Duration() float64 {
	if len(t) == 0 {
		return 0
	}
	d := t[len(t)-1].End - t[0].Start
	if d < 0 {
		return 0
	}
	return d
}

// Renumber sets block indices to 1..n in place and returns t.
func (t Track) Renumber() Track {
	for i := range t {
		t[i].Index = i + 1
	}
	return t
}

// CountSentinels returns how many blocks still carry the untranslated marker.
func (t Track) CountSentinels() int {
	n := 0
	for _, b := range t {
		if b.HasSentinel() {
			n++
		}
	}
	return n
}
