package chunking

import "autosub/internal/srt"

const (
	formalAvgDuration = 4.5
	formalAvgGap      = 0.6

	earlyLockSeconds  = 60.0
	earlyLockSegments = 20
)

// Segment is one recognizer segment with its words.
type Segment struct {
	Start float64
	End   float64
	Text  string
	Words []srt.Word
}

// Pacing is the outcome of a classification together with the measurements
// that produced it.
type Pacing struct {
	Name        ProfileName
	AvgDuration float64
	AvgGap      float64
	Segments    int
}

// Analyze measures segment pacing. Mean duration only counts segments with
// End > Start; mean gap only counts non-negative gaps between neighbours.
// Long segments or long pauses mean formal; no segments means spoken.
func Analyze(segments []Segment) Pacing {
	p := Pacing{Name: ProfileSpoken, Segments: len(segments)}
	if len(segments) == 0 {
		return p
	}

	var durSum float64
	durCount := 0
	for _, s := range segments {
		if s.End > s.Start {
			durSum += s.End - s.Start
			durCount++
		}
	}

	var gapSum float64
	gapCount := 0
	for i := 1; i < len(segments); i++ {
		if g := segments[i].Start - segments[i-1].End; g >= 0 {
			gapSum += g
			gapCount++
		}
	}

	if durCount > 0 {
		p.AvgDuration = durSum / float64(durCount)
	}
	if gapCount > 0 {
		p.AvgGap = gapSum / float64(gapCount)
	}
	if p.AvgDuration > formalAvgDuration || p.AvgGap > formalAvgGap {
		p.Name = ProfileFormal
	}
	return p
}

// Classify returns only the profile name chosen by Analyze.
func Classify(segments []Segment) ProfileName {
	return Analyze(segments).Name
}

// EarlyClassifier decides pacing from the opening of a stream so chunking
// can start before the whole transcript is available. It locks once the
// observed audio passes 60 seconds or more than 20 segments have arrived.
type EarlyClassifier struct {
	seen   []Segment
	locked bool
	pacing Pacing
}

// Observe records a segment and reports the locked profile once available.
func (c *EarlyClassifier) Observe(s Segment) (ProfileName, bool) {
	if c.locked {
		return c.pacing.Name, true
	}
	c.seen = append(c.seen, s)
	if s.End > earlyLockSeconds || len(c.seen) > earlyLockSegments {
		c.lock()
		return c.pacing.Name, true
	}
	return "", false
}

// Finish classifies whatever was observed when the stream ended before the
// classifier locked.
func (c *EarlyClassifier) Finish() Pacing {
	if !c.locked {
		c.lock()
	}
	return c.pacing
}

// Locked reports whether a decision has been made.
func (c *EarlyClassifier) Locked() bool {
	return c.locked
}

func (c *EarlyClassifier) lock() {
	c.pacing = Analyze(c.seen)
	c.locked = true
	c.seen = nil
}

// Words flattens segment words in order. Segments without words contribute
// nothing.
func Words(segments []Segment) []srt.Word {
	n := 0
	for _, s := range segments {
		n += len(s.Words)
	}
	out := make([]srt.Word, 0, n)
	for _, s := range segments {
		out = append(out, s.Words...)
	}
	return out
}
