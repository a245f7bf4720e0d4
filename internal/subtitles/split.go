package subtitles

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"autosub/internal/fileutil"
	"autosub/internal/logging"
	"autosub/internal/srt"
)

const (
	// SourceTrackName is the source-only track Split writes and Merge
	// prefers when present.
	SourceTrackName = "source.en.srt"
	chunkDirName    = "chunks"
	chunkPattern    = "chunk_%03d.srt"
)

// SplitRequest describes a track to prepare for external translation.
type SplitRequest struct {
	InputPath string
	// OutputDir defaults to the input's directory.
	OutputDir string
	// ChunkSize defaults to merge.chunk_size.
	ChunkSize int
}

// SplitResult lists what Split wrote.
type SplitResult struct {
	SourcePath string
	ChunkDir   string
	Chunks     []string
	Blocks     int
	// Bilingual reports whether target-language lines were removed.
	Bilingual bool
}

// Split writes the source-language track and cuts it into numbered chunk
// files for translation.
func (s *Service) Split(ctx context.Context, req SplitRequest) (SplitResult, error) {
	logger := withRunLogger(ctx, s.logger)
	if err := requireFile(req.InputPath, ErrInputNotFound); err != nil {
		return SplitResult{}, err
	}
	size := req.ChunkSize
	if size <= 0 {
		size = s.config.Merge.ChunkSize
	}
	outDir := strings.TrimSpace(req.OutputDir)
	if outDir == "" {
		outDir = filepath.Dir(req.InputPath)
	}
	if err := ensureDir(outDir); err != nil {
		return SplitResult{}, err
	}

	track, report, err := srt.ParseFile(req.InputPath)
	if err != nil {
		return SplitResult{}, fmt.Errorf("split: %w", err)
	}
	s.logParseReport(logger, req.InputPath, report)

	result := SplitResult{
		SourcePath: filepath.Join(outDir, SourceTrackName),
		ChunkDir:   filepath.Join(outDir, chunkDirName),
		Blocks:     len(track),
	}
	source, target := SplitTracks(track, s.isTarget)
	if countLines(target) > 0 {
		result.Bilingual = true
		if err := srt.WriteFile(result.SourcePath, source); err != nil {
			return SplitResult{}, fmt.Errorf("split: %w", err)
		}
		track = source
		logger.Info("bilingual input detected, wrote source-only track",
			logging.String(logging.FieldPath, result.SourcePath))
	} else if filepath.Clean(req.InputPath) != filepath.Clean(result.SourcePath) {
		if err := fileutil.CopyFile(req.InputPath, result.SourcePath); err != nil {
			return SplitResult{}, fmt.Errorf("split: copy source: %w", err)
		}
	}

	for i, chunk := range ChunkTrack(track, size) {
		path := filepath.Join(result.ChunkDir, fmt.Sprintf(chunkPattern, i))
		if err := srt.WriteFile(path, chunk); err != nil {
			return SplitResult{}, fmt.Errorf("split: %w", err)
		}
		result.Chunks = append(result.Chunks, path)
	}

	logger.Info("track split for translation",
		logging.Int("blocks", result.Blocks),
		logging.Int("chunks", len(result.Chunks)),
		logging.Int("chunk_size", size),
		logging.String("chunk_dir", result.ChunkDir),
	)
	return result, nil
}

// ChunkTrack cuts track into consecutive pieces of at most size blocks. Each
// piece keeps its blocks' original timing.
func ChunkTrack(track srt.Track, size int) []srt.Track {
	if size <= 0 {
		size = len(track)
	}
	var chunks []srt.Track
	for start := 0; start < len(track); start += size {
		end := min(start+size, len(track))
		chunks = append(chunks, track[start:end].Clone())
	}
	return chunks
}
