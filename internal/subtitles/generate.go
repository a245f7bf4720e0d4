package subtitles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"autosub/internal/chunking"
	"autosub/internal/config"
	"autosub/internal/logging"
	"autosub/internal/srt"
	"autosub/internal/textutil"
	"autosub/internal/transcript"
)

// GenerateRequest describes a transcript to turn into subtitles.
type GenerateRequest struct {
	TranscriptPath string
	// OutputDir defaults to the configured output directory.
	OutputDir string
	// BaseName defaults to the transcript file name without extension.
	BaseName string
	// Profile is "auto", "formal" or "spoken"; empty uses the configured
	// profile.
	Profile string
}

// GenerateResult reports the written subtitle file.
type GenerateResult struct {
	SubtitlePath string
	Profile      chunking.ProfileName
	Pacing       chunking.Pacing
	// ProfileSource is "configured" or "detected".
	ProfileSource string
	Blocks        int
	Words         int
	DroppedWords  int
}

// Generate chunks a recognizer transcript into a subtitle track.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	logger := withRunLogger(ctx, s.logger)
	path := strings.TrimSpace(req.TranscriptPath)
	if path == "" {
		return GenerateResult{}, fmt.Errorf("%w: path required", ErrTranscriptNotFound)
	}
	if err := requireFile(path, ErrTranscriptNotFound); err != nil {
		return GenerateResult{}, err
	}

	tr, err := transcript.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return GenerateResult{}, fmt.Errorf("%w: %s", ErrTranscriptNotFound, path)
		}
		return GenerateResult{}, fmt.Errorf("generate: %w", err)
	}
	if tr.DroppedWords > 0 {
		logging.WarnWithContext(logger, "transcript words without timing skipped", "transcript_untimed_words",
			logging.Int("dropped_words", tr.DroppedWords),
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldErrorHint, "re-run alignment if many words are missing"),
			logging.String(logging.FieldImpact, "skipped words do not appear in the subtitles"),
		)
	}

	result := GenerateResult{DroppedWords: tr.DroppedWords}
	profileName, err := s.chooseProfile(req.Profile, tr.Segments, &result)
	if err != nil {
		return GenerateResult{}, err
	}
	profile := chunking.LookupProfile(profileName)
	logger.Info("chunking profile selected",
		logging.Args(append(logging.DecisionAttrs("chunk_profile", string(profileName), result.ProfileSource),
			logging.Float64("avg_duration", result.Pacing.AvgDuration),
			logging.Float64("avg_gap", result.Pacing.AvgGap),
		)...)...,
	)

	words := chunking.Words(tr.Segments)
	track := chunking.Chunk(words, profile)
	result.Profile = profileName
	result.Words = len(words)
	result.Blocks = len(track)

	outDir := strings.TrimSpace(req.OutputDir)
	if outDir == "" {
		outDir = s.config.Paths.OutputDir
	}
	if err := ensureDir(outDir); err != nil {
		return GenerateResult{}, err
	}
	base := textutil.SanitizeFileName(req.BaseName)
	if base == "" {
		base = baseName(path)
	}
	result.SubtitlePath = filepath.Join(outDir, base+".srt")
	if err := srt.WriteFile(result.SubtitlePath, track); err != nil {
		return GenerateResult{}, fmt.Errorf("generate: %w", err)
	}

	logger.Info("subtitles generated",
		logging.String(logging.FieldPath, result.SubtitlePath),
		logging.Int("blocks", result.Blocks),
		logging.Int("words", result.Words),
	)
	return result, nil
}

// chooseProfile resolves the requested profile. Automatic selection feeds
// segments through the early classifier the same way a live recognizer would.
func (s *Service) chooseProfile(requested string, segments []chunking.Segment, result *GenerateResult) (chunking.ProfileName, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		requested = s.config.Transcribe.Profile
	}
	if requested != "" && requested != config.ProfileAuto {
		name, err := chunking.ParseProfileName(requested)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		result.ProfileSource = "configured"
		result.Pacing = chunking.Analyze(segments)
		return name, nil
	}

	var classifier chunking.EarlyClassifier
	for _, seg := range segments {
		if _, locked := classifier.Observe(seg); locked {
			break
		}
	}
	result.Pacing = classifier.Finish()
	result.ProfileSource = "detected"
	return result.Pacing.Name, nil
}
