package align

import (
	"math"
	"regexp"
	"strings"

	"autosub/internal/srt"
)

// DurationMismatchSeconds is the span difference that marks two tracks as
// probably not belonging to the same media.
const DurationMismatchSeconds = 5.0

// Thresholds decide whether a master block overlaps a secondary block enough
// to contribute its text.
type Thresholds struct {
	// MinOverlapRatio is compared against overlap divided by the master
	// block's own duration.
	MinOverlapRatio float64
	// MinOverlapSeconds admits blocks on absolute overlap when the ratio
	// test fails or the master block has no duration.
	MinOverlapSeconds float64
}

// DefaultThresholds returns the stock 0.3 ratio and 0.5 second thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{MinOverlapRatio: 0.3, MinOverlapSeconds: 0.5}
}

// Diagnostics describe the two inputs. They are warnings only and never stop
// a merge.
type Diagnostics struct {
	SecondaryBlocks   int
	MasterBlocks      int
	SecondaryDuration float64
	MasterDuration    float64
	Untranslated      int
	CountMismatch     bool
	DurationMismatch  bool
}

// Result is a merged track plus diagnostics.
type Result struct {
	Track       srt.Track
	Diagnostics Diagnostics
}

// Overlap returns the length of the shared time span of a and b, or 0.
func Overlap(a, b srt.Block) float64 {
	return math.Max(0, math.Min(a.End, b.End)-math.Max(a.Start, b.Start))
}

// Qualifies reports whether master overlaps secondary enough to contribute.
func Qualifies(secondary, master srt.Block, th Thresholds) bool {
	overlap := Overlap(secondary, master)
	if d := master.End - master.Start; d > 0 && overlap/d > th.MinOverlapRatio {
		return true
	}
	return overlap > th.MinOverlapSeconds
}

var (
	glossPattern = regexp.MustCompile(`\s*[(（][^)）]*[)）]`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// CleanTranslation collapses whitespace and strips parenthesised glosses
// such as "你好 (Hello)".
func CleanTranslation(text string) string {
	text = strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
	return strings.TrimSpace(glossPattern.ReplaceAllString(text, ""))
}

// Merge aligns master (translated) onto secondary (source). The result has
// exactly one block per secondary block, with secondary timing, and the
// translation or srt.Sentinel as its first line. Both tracks must be ordered
// by start time; the scan keeps a monotone lower bound on master so the cost
// is linear in the combined length.
func Merge(secondary, master srt.Track, th Thresholds) Result {
	diag := Diagnostics{
		SecondaryBlocks:   len(secondary),
		MasterBlocks:      len(master),
		SecondaryDuration: secondary.Duration(),
		MasterDuration:    master.Duration(),
	}
	diag.CountMismatch = diag.SecondaryBlocks != diag.MasterBlocks
	if len(secondary) > 0 && len(master) > 0 {
		diag.DurationMismatch = math.Abs(diag.MasterDuration-diag.SecondaryDuration) > DurationMismatchSeconds
	}

	merged := make(srt.Track, 0, len(secondary))
	lower := 0
	for i, s := range secondary {
		for lower < len(master) && master[lower].End < s.Start {
			lower++
		}

		var matched []string
		for j := lower; j < len(master); j++ {
			m := master[j]
			if m.Start > s.End {
				break
			}
			if Qualifies(s, m, th) {
				for _, line := range m.Lines {
					matched = append(matched, strings.TrimSpace(line))
				}
			}
		}

		translation := CleanTranslation(strings.Join(matched, " "))
		if translation == "" {
			translation = srt.Sentinel
			diag.Untranslated++
		}

		lines := make([]string, 0, len(s.Lines)+1)
		lines = append(lines, translation)
		lines = append(lines, s.Lines...)
		merged = append(merged, srt.Block{
			Index: i + 1,
			Start: s.Start,
			End:   s.End,
			Lines: lines,
		})
	}

	return Result{Track: merged, Diagnostics: diag}
}
