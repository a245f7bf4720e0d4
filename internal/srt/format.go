package srt

import (
	"bytes"
	"fmt"
	"strconv"

	"autosub/internal/fileutil"
)

// Format serializes track as SubRip text, numbering blocks 1..n.
func Format(track Track) []byte {
	var buf bytes.Buffer
	for i, block := range track {
		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteByte('\n')
		buf.WriteString(FormatTimestamp(block.Start))
		buf.WriteString(" --> ")
		buf.WriteString(FormatTimestamp(block.End))
		buf.WriteByte('\n')
		for _, line := range block.Lines {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteFile writes track to path through a temporary file in the same
// directory so readers never observe a partial file.
func WriteFile(path string, track Track) error {
	if err := fileutil.WriteAtomic(path, Format(track), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}
