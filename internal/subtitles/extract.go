package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"autosub/internal/logging"
	"autosub/internal/srt"
)

// ExtractResult names the two single-language tracks written by
// ExtractTracks.
type ExtractResult struct {
	SourcePath string
	TargetPath string
	Blocks     int
}

// ExtractTracks splits a bilingual file into "<base>.en.srt" and
// "<base>.<target>.srt" beside it, or in outDir when given. Untranslated
// markers stay on the target side so a later merge can find them.
func (s *Service) ExtractTracks(ctx context.Context, path, outDir string) (ExtractResult, error) {
	logger := withRunLogger(ctx, s.logger)
	if err := requireFile(path, ErrInputNotFound); err != nil {
		return ExtractResult{}, err
	}
	if strings.TrimSpace(outDir) == "" {
		outDir = filepath.Dir(path)
	}
	if err := ensureDir(outDir); err != nil {
		return ExtractResult{}, err
	}

	track, report, err := srt.ParseFile(path)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("extract: %w", err)
	}
	s.logParseReport(logger, path, report)

	base := baseName(path, ".bi", ".cn", ".en", "."+s.targetCode())
	source, target := SplitTracks(track, s.isTarget)
	result := ExtractResult{
		SourcePath: filepath.Join(outDir, base+".en.srt"),
		TargetPath: filepath.Join(outDir, base+"."+s.targetCode()+".srt"),
		Blocks:     len(track),
	}
	if err := srt.WriteFile(result.SourcePath, source); err != nil {
		return ExtractResult{}, fmt.Errorf("extract: %w", err)
	}
	if err := srt.WriteFile(result.TargetPath, target); err != nil {
		return ExtractResult{}, fmt.Errorf("extract: %w", err)
	}
	logger.Info("tracks extracted",
		logging.String("source_path", result.SourcePath),
		logging.String("target_path", result.TargetPath),
		logging.Int("blocks", result.Blocks),
	)
	return result, nil
}

// SplitTracks separates each block's lines by script. Both results keep
// every block and its timing; a side with nothing to show gets an empty
// block.
func SplitTracks(track srt.Track, isTarget func(string) bool) (source, target srt.Track) {
	source = make(srt.Track, 0, len(track))
	target = make(srt.Track, 0, len(track))
	for _, b := range track {
		src := srt.Block{Index: b.Index, Start: b.Start, End: b.End}
		tgt := src
		for _, line := range b.Lines {
			if strings.Contains(line, srt.Sentinel) || isTarget(line) {
				tgt.Lines = append(tgt.Lines, line)
				continue
			}
			src.Lines = append(src.Lines, line)
		}
		source = append(source, src)
		target = append(target, tgt)
	}
	return source, target
}

func countLines(track srt.Track) int {
	n := 0
	for _, b := range track {
		n += len(b.Lines)
	}
	return n
}

func (s *Service) logParseReport(logger *slog.Logger, path string, report srt.ParseReport) {
	if report.Clean() {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldPath, path),
		logging.Int("blocks", report.Blocks),
		logging.Int("skipped", len(report.Skipped)),
		logging.Int("malformed", len(report.Malformed)),
		logging.String(logging.FieldErrorHint, "run validate on the file to list problem blocks"),
	}
	if len(report.Skipped) > 0 {
		first := report.Skipped[0]
		attrs = append(attrs,
			logging.String(logging.FieldImpact, "skipped blocks are missing from the output"),
			logging.Group("first_skipped",
				logging.Int("ordinal", first.Ordinal),
				logging.String("reason", first.Reason),
				logging.String("excerpt", first.Excerpt),
			),
		)
	} else {
		attrs = append(attrs, logging.String(logging.FieldImpact, "malformed blocks keep zero timing"))
	}
	logging.WarnWithContext(logger, "subtitle file parsed with problems", "srt_parse_issues", attrs...)
}
