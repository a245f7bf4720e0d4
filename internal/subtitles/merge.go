package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"autosub/internal/align"
	"autosub/internal/gapfill"
	"autosub/internal/logging"
	"autosub/internal/srt"
	"autosub/internal/textutil"
)

// Translation sources reported in MergeResult.
const (
	TranslationFromFile     = "file"
	TranslationFromCombined = "combined"
	TranslationFromChunks   = "chunks"
)

// MergeRequest describes a source track and where to find its translation.
type MergeRequest struct {
	SourcePath string
	// TranslatedPath is optional. Without it Merge looks for
	// "<base>.<target>.srt" and then for translated chunk files.
	TranslatedPath string
	// OutputDir defaults to the source's directory.
	OutputDir string
	BaseName  string
	// EnglishTop puts the source lines above the translation.
	EnglishTop bool
	SkipFill   bool
}

// MergeResult reports the bilingual file and how it was assembled.
type MergeResult struct {
	BilingualPath string
	SourcePath    string
	// TranslationPath is the translated track that was aligned.
	TranslationPath   string
	TranslationSource string
	Diagnostics       align.Diagnostics
	Fill              gapfill.Report
	// Synced is set when filled translations were written back to
	// TranslationPath.
	Synced bool
}

// Merge aligns the translated track onto the source timing, writes
// "<base>.bi.srt" and then fills the untranslated blocks.
func (s *Service) Merge(ctx context.Context, req MergeRequest) (MergeResult, error) {
	logger := withRunLogger(ctx, s.logger)
	if err := requireFile(req.SourcePath, ErrInputNotFound); err != nil {
		return MergeResult{}, err
	}
	outDir := strings.TrimSpace(req.OutputDir)
	if outDir == "" {
		outDir = filepath.Dir(req.SourcePath)
	}
	if err := ensureDir(outDir); err != nil {
		return MergeResult{}, err
	}
	base := textutil.SanitizeFileName(req.BaseName)
	if base == "" {
		base = baseName(req.SourcePath, ".en", ".bi")
	}
	combined := filepath.Join(outDir, base+"."+s.targetCode()+".srt")

	result := MergeResult{SourcePath: req.SourcePath}
	if split := filepath.Join(outDir, SourceTrackName); fileHasContent(split) {
		result.SourcePath = split
	}
	source, report, err := srt.ParseFile(result.SourcePath)
	if err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	s.logParseReport(logger, result.SourcePath, report)

	translated, err := s.loadTranslation(ctx, req.TranslatedPath, combined, outDir, &result)
	if err != nil {
		return MergeResult{}, err
	}

	merged := align.Merge(source, translated, align.Thresholds{
		MinOverlapRatio:   s.config.Merge.MinOverlapRatio,
		MinOverlapSeconds: s.config.Merge.MinOverlapSeconds,
	})
	result.Diagnostics = merged.Diagnostics
	s.logDiagnostics(logger, merged.Diagnostics)

	track := merged.Track
	if req.EnglishTop {
		track = sourceFirst(track)
	}
	result.BilingualPath = filepath.Join(outDir, base+".bi.srt")
	if err := srt.WriteFile(result.BilingualPath, track); err != nil {
		return MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	logger.Info("bilingual track written",
		logging.String(logging.FieldPath, result.BilingualPath),
		logging.Int("blocks", len(track)),
		logging.Int("untranslated", merged.Diagnostics.Untranslated),
	)

	if req.SkipFill || merged.Diagnostics.Untranslated == 0 {
		return result, nil
	}
	filled, err := s.Fill(ctx, result.BilingualPath)
	if err != nil {
		return result, err
	}
	result.Fill = filled.Report
	if !filled.Written {
		return result, nil
	}

	// Filled lines go back to whichever track the translation came from.
	syncPath := result.TranslationPath
	_, target := SplitTracks(filled.Track, s.isTarget)
	if err := srt.WriteFile(syncPath, target); err != nil {
		return result, fmt.Errorf("merge: sync translated track: %w", err)
	}
	result.Synced = true
	logger.Info("translated track updated with filled lines",
		logging.String(logging.FieldPath, syncPath),
		logging.Int("patched", filled.Report.Patched),
	)
	return result, nil
}

// loadTranslation resolves the translated track: an explicit file first,
// then a non-empty combined track, then translated chunks, which are merged
// into the combined track.
func (s *Service) loadTranslation(ctx context.Context, explicit, combined, outDir string, result *MergeResult) (srt.Track, error) {
	logger := withRunLogger(ctx, s.logger)
	path := strings.TrimSpace(explicit)
	switch {
	case path != "":
		if err := requireFile(path, ErrInputNotFound); err != nil {
			return nil, err
		}
		result.TranslationSource = TranslationFromFile
	case fileHasContent(combined):
		path = combined
		result.TranslationSource = TranslationFromCombined
	default:
		chunkDir := filepath.Join(outDir, chunkDirName)
		n, err := s.MergeChunks(ctx, chunkDir, combined)
		if err != nil {
			return nil, err
		}
		path = combined
		result.TranslationSource = TranslationFromChunks
		logger.Info("translated chunks combined",
			logging.String("chunk_dir", chunkDir),
			logging.Int("chunks", n),
			logging.String(logging.FieldPath, combined),
		)
	}
	result.TranslationPath = path

	track, report, err := srt.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	s.logParseReport(logger, path, report)
	return track, nil
}

var chunkNumber = regexp.MustCompile(`^chunk_(\d+)`)

// MergeChunks concatenates the translated chunk files in dir, in chunk
// order, into output and returns how many chunks were used. Files named
// "chunk_N.cn.srt" or "chunk_N.<target>.srt" are preferred; otherwise every
// "chunk_N.srt" that is not a source-language chunk is taken. Unreadable
// chunks are logged and skipped.
func (s *Service) MergeChunks(ctx context.Context, dir, output string) (int, error) {
	logger := withRunLogger(ctx, s.logger)
	files, err := s.translatedChunks(dir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("%w: no translated chunks in %s", ErrNoTranslation, dir)
	}

	var (
		combined srt.Track
		used     int
	)
	for _, file := range files {
		track, report, err := srt.ParseFile(file)
		if err != nil {
			logging.WarnWithContext(logger, "translated chunk unreadable", "chunk_unreadable",
				logging.Error(err),
				logging.String(logging.FieldPath, file),
				logging.String(logging.FieldImpact, "blocks in this chunk are marked untranslated"),
			)
			continue
		}
		s.logParseReport(logger, file, report)
		combined = append(combined, track...)
		used++
	}
	if used == 0 {
		return 0, fmt.Errorf("%w: no readable chunks in %s", ErrNoTranslation, dir)
	}
	if err := srt.WriteFile(output, combined.Renumber()); err != nil {
		return used, fmt.Errorf("merge chunks: %w", err)
	}
	return used, nil
}

func (s *Service) translatedChunks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no translated track and no chunk directory %s", ErrNoTranslation, dir)
		}
		return nil, fmt.Errorf("merge chunks: %w", err)
	}
	suffixes := []string{".cn.srt"}
	if code := s.targetCode(); code != "cn" {
		suffixes = append(suffixes, "."+code+".srt")
	}

	var tagged, plain []string
	for _, entry := range entries {
		name := entry.Name()
		lower := strings.ToLower(name)
		if entry.IsDir() || !chunkNumber.MatchString(lower) || !strings.HasSuffix(lower, ".srt") {
			continue
		}
		switch {
		case hasAnySuffix(lower, suffixes...):
			tagged = append(tagged, filepath.Join(dir, name))
		case strings.HasSuffix(lower, ".en.srt"):
		default:
			plain = append(plain, filepath.Join(dir, name))
		}
	}
	files := tagged
	if len(files) == 0 {
		files = plain
	}
	slices.SortFunc(files, func(a, b string) int {
		if d := chunkOrdinal(a) - chunkOrdinal(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return files, nil
}

func chunkOrdinal(path string) int {
	m := chunkNumber.FindStringSubmatch(strings.ToLower(filepath.Base(path)))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// sourceFirst moves each block's translation line below the source lines.
func sourceFirst(track srt.Track) srt.Track {
	out := make(srt.Track, len(track))
	for i, b := range track {
		lines := make([]string, 0, len(b.Lines))
		if len(b.Lines) > 0 {
			lines = append(lines, b.Lines[1:]...)
			lines = append(lines, b.Lines[0])
		}
		b.Lines = lines
		out[i] = b
	}
	return out
}

func (s *Service) logDiagnostics(logger *slog.Logger, diag align.Diagnostics) {
	if diag.CountMismatch {
		logging.WarnWithContext(logger, "source and translation block counts differ", "merge_count_mismatch",
			logging.Int("source_blocks", diag.SecondaryBlocks),
			logging.Int("translated_blocks", diag.MasterBlocks),
			logging.String(logging.FieldErrorHint, "run compare to check the translation was not re-segmented"),
			logging.String(logging.FieldImpact, "alignment relies on timing overlap only"),
		)
	}
	if diag.DurationMismatch {
		logging.WarnWithContext(logger, "source and translation durations differ", "merge_duration_mismatch",
			logging.Float64("source_duration", diag.SecondaryDuration),
			logging.Float64("translated_duration", diag.MasterDuration),
			logging.String(logging.FieldErrorHint, "confirm both tracks belong to the same media"),
			logging.String(logging.FieldImpact, "blocks past the shorter track stay untranslated"),
		)
	}
}
