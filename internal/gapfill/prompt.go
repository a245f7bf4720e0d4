package gapfill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"autosub/internal/srt"
)

// DefaultBatchSize is the number of gaps sent in one request.
const DefaultBatchSize = 5

// PromptOptions name the languages in the instruction line. Values are
// display names such as "English".
type PromptOptions struct {
	SourceLanguage string
	TargetLanguage string
}

func (o PromptOptions) withDefaults() PromptOptions {
	if strings.TrimSpace(o.SourceLanguage) == "" {
		o.SourceLanguage = "English"
	}
	if strings.TrimSpace(o.TargetLanguage) == "" {
		o.TargetLanguage = "Simplified Chinese"
	}
	return o
}

// BuildPrompt renders one request covering every item in batch.
func BuildPrompt(batch []GapItem, opts PromptOptions) string {
	opts = opts.withDefaults()
	var b strings.Builder
	fmt.Fprintf(&b, "Translate %s to %s.\n", opts.SourceLanguage, opts.TargetLanguage)
	for _, item := range batch {
		fmt.Fprintf(&b, "\nItem %d:\n", item.ID)
		fmt.Fprintf(&b, "Context (Prev): %s\n", item.PrecedingContext)
		fmt.Fprintf(&b, "TARGET: \"%s\"\n", item.SourceText)
		fmt.Fprintf(&b, "Context (Next): %s\n", item.FollowingContext)
	}
	b.WriteString("\nOutput Format:\nItem ID: [Translation]\n")
	return b.String()
}

var itemLine = regexp.MustCompile(`(?i)^[\s*>-]*item\s+(\d+)\s*\**\s*[:：]\s*\**\s*(.*)$`)

// ParseResponse extracts "Item N: text" lines. Lines that do not match,
// items with no text and items echoing the untranslated marker are
// ignored. A later line for the same id wins.
func ParseResponse(text string) map[int]string {
	out := make(map[int]string)
	for _, line := range strings.Split(text, "\n") {
		m := itemLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if echoesSentinel(m[2]) {
			continue
		}
		value := cleanAnswer(m[2])
		if value == "" {
			continue
		}
		out[id] = value
	}
	return out
}

func cleanAnswer(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.Trim(s, "*"))
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// echoesSentinel reports whether an answer repeats the untranslated marker,
// with or without its brackets.
func echoesSentinel(raw string) bool {
	upper := strings.ToUpper(raw)
	return strings.Contains(upper, srt.Sentinel) ||
		strings.Trim(strings.TrimSpace(strings.Trim(upper, " *")), "[]") == strings.Trim(srt.Sentinel, "[]")
}
