package subtitles

import (
	"context"
	"fmt"

	"github.com/gofrs/flock"

	"autosub/internal/gapfill"
	"autosub/internal/logging"
	"autosub/internal/srt"
)

// FillResult reports a gap fill run over one file.
type FillResult struct {
	Path   string
	Report gapfill.Report
	// Written is set when the file was rewritten with new translations.
	Written bool
	Track   srt.Track
}

// Fill patches the untranslated markers in the bilingual file at path and
// rewrites it when anything changed. A second Fill on the same file fails
// with ErrTrackLocked until the first finishes.
func (s *Service) Fill(ctx context.Context, path string) (FillResult, error) {
	logger := withRunLogger(ctx, s.logger)
	if err := requireFile(path, ErrInputNotFound); err != nil {
		return FillResult{}, err
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return FillResult{}, fmt.Errorf("fill: acquire lock: %w", err)
	}
	if !ok {
		return FillResult{}, fmt.Errorf("%w: %s", ErrTrackLocked, path)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release fill lock", logging.Error(err))
		}
	}()

	track, report, err := srt.ParseFile(path)
	if err != nil {
		return FillResult{}, fmt.Errorf("fill: %w", err)
	}
	s.logParseReport(logger, path, report)

	filled, fillReport := s.coordinator().Fill(ctx, track)
	result := FillResult{Path: path, Report: fillReport, Track: filled}
	if fillReport.Patched == 0 {
		return result, nil
	}
	if err := srt.WriteFile(path, filled); err != nil {
		return result, fmt.Errorf("fill: %w", err)
	}
	result.Written = true
	logger.Info("filled track written",
		logging.String(logging.FieldPath, path),
		logging.Int("patched", fillReport.Patched),
		logging.Int("remaining", fillReport.Remaining()),
	)
	return result, nil
}
