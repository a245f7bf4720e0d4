// Package transcript reads recognizer output (WhisperX or faster-whisper
// style segments with word timings) as chunking segments.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"autosub/internal/chunking"
	"autosub/internal/srt"
)

type word struct {
	Word  string   `json:"word" yaml:"word"`
	Text  string   `json:"text" yaml:"text"`
	Start *float64 `json:"start" yaml:"start"`
	End   *float64 `json:"end" yaml:"end"`
}

type segment struct {
	Text  string  `json:"text" yaml:"text"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Words []word  `json:"words" yaml:"words"`
}

type payload struct {
	Language string    `json:"language" yaml:"language"`
	Segments []segment `json:"segments" yaml:"segments"`
}

// Transcript is the decoded recognizer output.
type Transcript struct {
	Language string
	Segments []chunking.Segment
	// DroppedWords counts words that had no usable timing.
	DroppedWords int
}

// Load reads a transcript from path. Files ending in .yaml or .yml are read
// as YAML, everything else as JSON.
func Load(path string) (Transcript, error) {
	if strings.TrimSpace(path) == "" {
		return Transcript{}, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

// DecodeJSON decodes a JSON transcript.
func DecodeJSON(data []byte) (Transcript, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Transcript{}, fmt.Errorf("parse transcript json: %w", err)
	}
	return p.convert()
}

// DecodeYAML decodes a YAML transcript with the same layout as the JSON form.
func DecodeYAML(data []byte) (Transcript, error) {
	var p payload
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Transcript{}, fmt.Errorf("parse transcript yaml: %w", err)
	}
	return p.convert()
}

func (p payload) convert() (Transcript, error) {
	if p.Segments == nil {
		return Transcript{}, errors.New("transcript has no segments field")
	}
	out := Transcript{Language: strings.TrimSpace(p.Language)}
	out.Segments = make([]chunking.Segment, 0, len(p.Segments))
	for _, s := range p.Segments {
		seg := chunking.Segment{Start: s.Start, End: s.End, Text: strings.TrimSpace(s.Text)}
		for _, w := range s.Words {
			text := w.Word
			if text == "" {
				text = w.Text
			}
			// WhisperX leaves numerals and symbols without alignment.
			if w.Start == nil || w.End == nil || strings.TrimSpace(text) == "" {
				out.DroppedWords++
				continue
			}
			seg.Words = append(seg.Words, srt.Word{Start: *w.Start, End: *w.End, Text: text})
		}
		out.Segments = append(out.Segments, seg)
	}
	return out, nil
}
