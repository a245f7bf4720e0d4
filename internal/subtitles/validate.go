package subtitles

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"autosub/internal/align"
	"autosub/internal/logging"
	"autosub/internal/srt"
)

// Issue kinds reported by Validate.
const (
	IssueParse              = "parse"
	IssueEmpty              = "empty"
	IssueTranslatorNote     = "translator_note"
	IssueParenthetical      = "parenthetical"
	IssueUntranslated       = "untranslated"
	IssueMissingTranslation = "missing_translation"
	IssueCountMismatch      = "count_mismatch"
)

// Issue is one problem found in a translated file.
type Issue struct {
	File string
	// Block is the 1-based block number, or 0 for file-level issues.
	Block int
	Kind  string
	Text  string
}

// ValidateResult lists the issues found under a path.
type ValidateResult struct {
	Files  int
	Blocks int
	Issues []Issue
}

// OK reports whether no issues were found.
func (r ValidateResult) OK() bool {
	return len(r.Issues) == 0
}

const excerptRunes = 60

var (
	mergeNote    = regexp.MustCompile(`\(\s*line\s*\d+\s*merge\s*\)`)
	englishNote  = regexp.MustCompile(`\(\s*english\s*\)`)
	wholeAside   = regexp.MustCompile(`^\(.*\)$`)
)

// Validate checks a translated file for the artefacts translators tend to
// leave behind. Given a directory it checks the translated chunks against
// their sources instead, using a "chunks" subdirectory when one exists.
func (s *Service) Validate(ctx context.Context, path string) (ValidateResult, error) {
	logger := withRunLogger(ctx, s.logger)
	info, err := os.Stat(path)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("%w: %s: %w", ErrInputNotFound, path, err)
	}
	var result ValidateResult
	if info.IsDir() {
		dir := path
		if sub := filepath.Join(path, chunkDirName); isDir(sub) {
			dir = sub
		}
		result, err = s.ValidateChunks(dir)
	} else {
		result, err = validateFile(path)
	}
	if err != nil {
		return result, err
	}
	logger.Info("validation complete",
		logging.String(logging.FieldPath, path),
		logging.Int("files", result.Files),
		logging.Int("blocks", result.Blocks),
		logging.Int("issues", len(result.Issues)),
	)
	return result, nil
}

// ValidateChunks pairs every source chunk in dir with its translation and
// reports missing translations, block count differences and content
// problems in the translations.
func (s *Service) ValidateChunks(dir string) (ValidateResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("%w: %s: %w", ErrInputNotFound, dir, err)
	}
	tags := []string{".cn", "." + s.targetCode()}

	var result ValidateResult
	for _, entry := range entries {
		name := entry.Name()
		lower := strings.ToLower(name)
		if entry.IsDir() || !chunkNumber.MatchString(lower) || !strings.HasSuffix(lower, ".srt") {
			continue
		}
		stem := strings.TrimSuffix(lower, ".srt")
		if strings.Contains(stem, ".") {
			continue
		}

		sourcePath := filepath.Join(dir, name)
		translatedPath := ""
		for _, tag := range tags {
			candidate := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+tag+".srt")
			if fileHasContent(candidate) {
				translatedPath = candidate
				break
			}
		}
		if translatedPath == "" {
			result.Issues = append(result.Issues, Issue{File: sourcePath, Kind: IssueMissingTranslation, Text: "no translated chunk"})
			continue
		}

		source, _, err := srt.ParseFile(sourcePath)
		if err != nil {
			return result, fmt.Errorf("validate: %w", err)
		}
		checked, err := validateFile(translatedPath)
		if err != nil {
			return result, err
		}
		result.Files += checked.Files
		result.Blocks += checked.Blocks
		if checked.Blocks != len(source) {
			result.Issues = append(result.Issues, Issue{
				File: translatedPath,
				Kind: IssueCountMismatch,
				Text: fmt.Sprintf("source has %d blocks, translation has %d", len(source), checked.Blocks),
			})
		}
		result.Issues = append(result.Issues, checked.Issues...)
	}
	return result, nil
}

func validateFile(path string) (ValidateResult, error) {
	track, report, err := srt.ParseFile(path)
	if err != nil {
		return ValidateResult{}, fmt.Errorf("validate: %w", err)
	}
	result := ValidateResult{Files: 1, Blocks: len(track)}
	for _, bad := range append(report.Skipped, report.Malformed...) {
		result.Issues = append(result.Issues, Issue{File: path, Block: bad.Ordinal, Kind: IssueParse, Text: bad.Reason + ": " + bad.Excerpt})
	}
	for i, b := range track {
		for _, kind := range blockIssues(b) {
			result.Issues = append(result.Issues, Issue{File: path, Block: i + 1, Kind: kind, Text: excerpt(b.Text())})
		}
	}
	return result, nil
}

// blockIssues returns the problem kinds present in one translated block.
func blockIssues(b srt.Block) []string {
	text := strings.TrimSpace(b.Text())
	if text == "" {
		return []string{IssueEmpty}
	}
	var kinds []string
	lower := strings.ToLower(text)
	if mergeNote.MatchString(lower) || englishNote.MatchString(lower) {
		kinds = append(kinds, IssueTranslatorNote)
	}
	if wholeAside.MatchString(text) {
		kinds = append(kinds, IssueParenthetical)
	}
	if b.HasSentinel() {
		kinds = append(kinds, IssueUntranslated)
	}
	return kinds
}

func excerpt(text string) string {
	if runes := []rune(text); len(runes) > excerptRunes {
		return string(runes[:excerptRunes]) + "..."
	}
	return text
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Comparison describes how two tracks line up before merging.
type Comparison struct {
	SourceBlocks       int
	TranslatedBlocks   int
	SourceDuration     float64
	TranslatedDuration float64
	CountMismatch      bool
	DurationMismatch   bool
}

// Matched reports whether the tracks agree on block count and duration.
func (c Comparison) Matched() bool {
	return !c.CountMismatch && !c.DurationMismatch
}

// Compare reads both tracks and compares their block counts and spans.
func (s *Service) Compare(ctx context.Context, sourcePath, translatedPath string) (Comparison, error) {
	logger := withRunLogger(ctx, s.logger)
	for _, path := range []string{sourcePath, translatedPath} {
		if err := requireFile(path, ErrInputNotFound); err != nil {
			return Comparison{}, err
		}
	}
	source, report, err := srt.ParseFile(sourcePath)
	if err != nil {
		return Comparison{}, fmt.Errorf("compare: %w", err)
	}
	s.logParseReport(logger, sourcePath, report)
	translated, report, err := srt.ParseFile(translatedPath)
	if err != nil {
		return Comparison{}, fmt.Errorf("compare: %w", err)
	}
	s.logParseReport(logger, translatedPath, report)

	cmp := Comparison{
		SourceBlocks:       len(source),
		TranslatedBlocks:   len(translated),
		SourceDuration:     source.Duration(),
		TranslatedDuration: translated.Duration(),
	}
	cmp.CountMismatch = cmp.SourceBlocks != cmp.TranslatedBlocks
	if cmp.SourceBlocks > 0 && cmp.TranslatedBlocks > 0 {
		cmp.DurationMismatch = math.Abs(cmp.SourceDuration-cmp.TranslatedDuration) > align.DurationMismatchSeconds
	}
	return cmp, nil
}
