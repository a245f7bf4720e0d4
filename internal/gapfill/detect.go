package gapfill

import (
	"fmt"
	"strings"

	"autosub/internal/srt"
)

// GapItem is one block awaiting translation.
type GapItem struct {
	// ID numbers gaps from 1 in track order; prompts and responses refer to it.
	ID int
	// BlockIndex and LineIndex locate the sentinel line to replace.
	BlockIndex int
	LineIndex  int
	SourceText string
	// PrecedingContext and FollowingContext render the neighbouring blocks
	// as "[source] -> [translation]".
	PrecedingContext string
	FollowingContext string
}

// Detect returns the gaps in track. A block is a gap when it has a sentinel
// line and at least one non-empty line that isTarget rejects. When a block
// holds several sentinel lines the last one is replaced.
func Detect(track srt.Track, isTarget func(string) bool) []GapItem {
	var items []GapItem
	for i, block := range track {
		lineIdx := -1
		var source []string
		for j, line := range block.Lines {
			switch {
			case strings.Contains(line, srt.Sentinel):
				lineIdx = j
			case !isTarget(line):
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					source = append(source, trimmed)
				}
			}
		}
		if lineIdx < 0 || len(source) == 0 {
			continue
		}

		item := GapItem{
			ID:         len(items) + 1,
			BlockIndex: i,
			LineIndex:  lineIdx,
			SourceText: strings.Join(source, " "),
		}
		if i > 0 {
			item.PrecedingContext = contextOf(track[i-1], isTarget)
		}
		if i < len(track)-1 {
			item.FollowingContext = contextOf(track[i+1], isTarget)
		}
		items = append(items, item)
	}
	return items
}

func contextOf(block srt.Block, isTarget func(string) bool) string {
	var source, target []string
	for _, line := range block.Lines {
		switch {
		case isTarget(line):
			target = append(target, line)
		case !strings.Contains(line, srt.Sentinel):
			source = append(source, line)
		}
	}
	return fmt.Sprintf("[%s] -> [%s]", strings.Join(source, " "), strings.Join(target, " "))
}

// Batch splits items into consecutive groups of at most size items.
func Batch(items []GapItem, size int) [][]GapItem {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]GapItem
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}
