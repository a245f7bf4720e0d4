package srt

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reasons recorded in a ParseReport.
const (
	ReasonTooShort           = "too_short"
	ReasonNoTimestamp        = "no_timestamp"
	ReasonMalformedTimestamp = "malformed_timestamp"
)

const excerptLimit = 40

// Issue describes one block the parser dropped or repaired.
type Issue struct {
	// Ordinal is the 1-based position of the raw block in the file.
	Ordinal int
	Reason  string
	Excerpt string
}

// ParseReport aggregates per-block parse results.
type ParseReport struct {
	Blocks int
	// Skipped lists blocks that were dropped.
	Skipped []Issue
	// Malformed lists blocks kept with zero timing because a timestamp
	// could not be read.
	Malformed []Issue
}

// Clean reports whether every raw block parsed without repair.
func (r ParseReport) Clean() bool {
	return len(r.Skipped) == 0 && len(r.Malformed) == 0
}

var (
	blockSeparator = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
	endTimestamp   = regexp.MustCompile(`^\s*(\d+:\d{2}:\d{2}[.,]\d{3})(.*)$`)
	bom            = []byte("\ufeff")
)

// ParseFile reads and parses the SubRip file at path.
func ParseFile(path string) (Track, ParseReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ParseReport{}, fmt.Errorf("read srt: %w", err)
	}
	track, report := Parse(data)
	return track, report, nil
}

// Parse decodes SubRip content. It never fails; unusable blocks are listed
// in the report.
func Parse(data []byte) (Track, ParseReport) {
	data = bytes.TrimPrefix(data, bom)
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSpace(content)

	var report ParseReport
	if content == "" {
		return nil, report
	}

	var track Track
	counter := 0
	for ordinal, raw := range blockSeparator.Split(content, -1) {
		lines := nonEmptyLines(raw)
		if len(lines) < 2 {
			if len(lines) > 0 {
				report.Skipped = append(report.Skipped, issue(ordinal+1, ReasonTooShort, lines))
			}
			continue
		}

		counter++
		index, timeLine, text, ok := splitHeader(lines, counter)
		if !ok {
			counter--
			report.Skipped = append(report.Skipped, issue(ordinal+1, ReasonNoTimestamp, lines))
			continue
		}

		start, end, trailing, err := parseTimeLine(timeLine)
		if err != nil {
			report.Malformed = append(report.Malformed, issue(ordinal+1, ReasonMalformedTimestamp, []string{timeLine}))
			start, end = 0, 0
		}
		if trailing != "" {
			text = append([]string{trailing}, text...)
		}
		for i, line := range text {
			text[i] = norm.NFC.String(line)
		}

		track = append(track, Block{Index: index, Start: start, End: end, Lines: text})
	}
	report.Blocks = len(track)
	return track, report
}

func nonEmptyLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// splitHeader locates the timing line. A numeric first line followed by a
// timing line supplies the index; otherwise the running counter does.
func splitHeader(lines []string, counter int) (int, string, []string, bool) {
	if n, err := strconv.Atoi(lines[0]); err == nil && strings.Contains(lines[1], "-->") {
		return n, lines[1], copyLines(lines[2:]), true
	}
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			return counter, line, copyLines(lines[i+1:]), true
		}
	}
	return 0, "", nil, false
}

func copyLines(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}

// parseTimeLine reads "start --> end" and returns any text glued after the
// end timestamp.
func parseTimeLine(line string) (float64, float64, string, error) {
	startText, endText, _ := strings.Cut(line, "-->")
	start, err := ParseTimestamp(startText)
	if err != nil {
		return 0, 0, "", err
	}
	m := endTimestamp.FindStringSubmatch(endText)
	if m == nil {
		return 0, 0, "", fmt.Errorf("invalid end timestamp %q", strings.TrimSpace(endText))
	}
	end, err := ParseTimestamp(m[1])
	if err != nil {
		return 0, 0, "", err
	}
	return start, end, strings.TrimSpace(m[2]), nil
}

func issue(ordinal int, reason string, lines []string) Issue {
	excerpt := strings.Join(lines, " | ")
	if runes := []rune(excerpt); len(runes) > excerptLimit {
		excerpt = string(runes[:excerptLimit]) + "..."
	}
	return Issue{Ordinal: ordinal, Reason: reason, Excerpt: excerpt}
}
