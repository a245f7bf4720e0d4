package chunking

import (
	"strings"
	"unicode/utf8"

	"autosub/internal/srt"
)

const (
	// stretchFactor bounds how far a block may overrun MaxChars to finish a
	// sentence.
	stretchFactor = 1.4
	lookAhead     = 5
)

// Chunk groups words into subtitle blocks using profile p. Blocks carry a
// single line of text and are numbered from 1.
func Chunk(words []srt.Word, p Profile) srt.Track {
	if len(words) == 0 {
		return nil
	}
	stretchLimit := float64(p.MaxChars) * stretchFactor

	var track srt.Track
	i := 0
	for i < len(words) {
		first := words[i]
		start := first.Start
		end := first.End
		text := first.Text
		count := 1
		i++

		for i < len(words) {
			word := words[i]
			trimmed := strings.TrimSpace(word.Text)
			textLen := utf8.RuneCountInString(text)
			wordLen := utf8.RuneCountInString(trimmed)

			gap := word.Start - words[i-1].End
			overChars := textLen+wordLen > p.MaxChars
			overDuration := word.End-start > p.MaxDuration
			largeGap := gap > p.GapThreshold
			sentenceEnd := endsSentence(trimmed)
			hasMinWords := count >= p.MinWords
			hasMinContext := textLen > p.MinContextChars

			if overChars && !overDuration && sentenceNear(words, i, sentenceEnd, textLen, wordLen, stretchLimit) {
				overChars = false
			}

			shouldBreak := overChars ||
				overDuration ||
				(largeGap && hasMinWords) ||
				(sentenceEnd && hasMinContext && hasMinWords)

			if shouldBreak {
				hardLimit := overChars || overDuration
				tooSmall := utf8.RuneCountInString(strings.TrimSpace(text)) < p.MinYieldChars
				if !tooSmall || hardLimit {
					if sentenceEnd && !hardLimit {
						text = smartJoin(text, word.Text)
						end = word.End
						i++
					}
					break
				}
			}

			text = smartJoin(text, word.Text)
			end = word.End
			count++
			i++
		}

		track = append(track, srt.Block{
			Index: len(track) + 1,
			Start: start,
			End:   end,
			Lines: []string{strings.TrimSpace(text)},
		})
	}
	return track
}

// sentenceNear reports whether the block may overrun the character budget
// because the sentence finishes with the current word or within the next
// few words.
func sentenceNear(words []srt.Word, i int, sentenceEnd bool, textLen, wordLen int, limit float64) bool {
	if sentenceEnd && float64(textLen+wordLen) < limit {
		return true
	}
	for j := 1; j <= lookAhead && i+j < len(words); j++ {
		if endsSentence(strings.TrimSpace(words[i+j].Text)) {
			return float64(textLen) < limit
		}
	}
	return false
}

func endsSentence(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	switch r {
	case '.', '?', '!', '。', '？', '！':
		return true
	}
	return false
}

// smartJoin concatenates recognizer tokens, adding a space only when
// neither side already carries one.
func smartJoin(a, b string) string {
	if a == "" {
		return b
	}
	if strings.HasSuffix(a, " ") || strings.HasPrefix(b, " ") {
		return a + b
	}
	return a + " " + b
}
