package gapfill

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"autosub/internal/language"
	"autosub/internal/logging"
	"autosub/internal/srt"
)

// Task is one prompt handed to a Generator.
type Task struct {
	ID     int
	Prompt string
}

// Outcome is the Generator's answer to the task with the same ID. An absent
// outcome counts as a failure.
type Outcome struct {
	ID   int
	Text string
	OK   bool
}

// Generator answers prompts. Implementations may run tasks concurrently but
// must correlate each outcome to its task ID.
type Generator interface {
	Generate(ctx context.Context, tasks []Task) []Outcome
}

// Cache remembers translations across runs.
type Cache interface {
	Lookup(ctx context.Context, key string) (string, bool)
	Store(ctx context.Context, key, text string) error
}

// CacheKey identifies a gap by its text, its neighbours and the target
// language, so the same line in a different scene is translated again.
func CacheKey(source, prev, next, target string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{source, prev, next, target}, "\x00")))
	return hex.EncodeToString(sum[:])
}

// Report summarises one Fill run.
type Report struct {
	Gaps          int
	Patched       int
	Batches       int
	FailedBatches int
	CacheHits     int
	// Skipped is set when gaps remained and no generator was configured.
	Skipped bool
}

// Remaining is the number of gaps still carrying the sentinel.
func (r Report) Remaining() int {
	return r.Gaps - r.Patched
}

// Coordinator detects gaps, dispatches them and patches the answers in.
type Coordinator struct {
	Generator Generator
	BatchSize int
	Cache     Cache
	Logger    *slog.Logger
	Prompt    PromptOptions
	// TargetLanguage is the code used for script detection and cache keys.
	// Empty means "zh".
	TargetLanguage string
	// IsTarget overrides script detection for TargetLanguage.
	IsTarget func(string) bool
}

// Fill returns a copy of track with as many gaps patched as the cache and
// generator could answer. The input track is never modified.
func (c *Coordinator) Fill(ctx context.Context, track srt.Track) (srt.Track, Report) {
	logger := logging.NewComponentLogger(logging.WithContext(ctx, c.Logger), "gapfill")
	target := c.TargetLanguage
	if target == "" {
		target = "zh"
	}
	isTarget := c.IsTarget
	if isTarget == nil {
		isTarget = language.Matcher(target)
	}

	out := track.Clone()
	items := Detect(out, isTarget)
	report := Report{Gaps: len(items)}
	if len(items) == 0 {
		logger.Debug("no translation gaps found", logging.Int("blocks", len(track)))
		return out, report
	}

	pending := items
	if c.Cache != nil {
		pending = pending[:0:0]
		for _, item := range items {
			key := CacheKey(item.SourceText, item.PrecedingContext, item.FollowingContext, target)
			if text, ok := c.Cache.Lookup(ctx, key); ok && patch(out, item, text) {
				report.CacheHits++
				report.Patched++
				continue
			}
			pending = append(pending, item)
		}
	}

	if len(pending) == 0 {
		logger.Info("gaps filled from cache", logging.Int("gaps", report.Gaps), logging.Int("cache_hits", report.CacheHits))
		return out, report
	}
	if c.Generator == nil {
		report.Skipped = true
		logging.WarnWithContext(logger, "translation gaps left unfilled", "gapfill_skipped",
			logging.Int("gaps", report.Gaps),
			logging.Int("remaining", len(pending)),
			logging.String(logging.FieldErrorHint, "set llm.api_key or OPENROUTER_API_KEY to enable gap fill"),
			logging.String(logging.FieldImpact, "blocks keep the "+srt.Sentinel+" marker"),
		)
		return out, report
	}

	batches := Batch(pending, c.BatchSize)
	tasks := make([]Task, len(batches))
	for i, batch := range batches {
		tasks[i] = Task{ID: i, Prompt: BuildPrompt(batch, c.Prompt)}
	}
	report.Batches = len(batches)
	logger.Info("dispatching translation gaps",
		logging.Int("gaps", report.Gaps),
		logging.Int("pending", len(pending)),
		logging.Int("batches", len(batches)),
	)

	answers := make(map[int]Outcome, len(tasks))
	for _, outcome := range c.Generator.Generate(ctx, tasks) {
		if outcome.ID >= 0 && outcome.ID < len(batches) {
			answers[outcome.ID] = outcome
		}
	}

	for i, batch := range batches {
		outcome, ok := answers[i]
		if !ok || !outcome.OK {
			report.FailedBatches++
			logging.WarnWithContext(logger, "translation batch failed", "gapfill_batch_failed",
				logging.Int("batch", i),
				logging.Int("items", len(batch)),
				logging.String(logging.FieldErrorHint, "rerun fill to retry the remaining gaps"),
				logging.String(logging.FieldImpact, "batch blocks keep the "+srt.Sentinel+" marker"),
			)
			continue
		}
		translations := ParseResponse(outcome.Text)
		for _, item := range batch {
			text, ok := translations[item.ID]
			if !ok || !patch(out, item, text) {
				continue
			}
			report.Patched++
			if c.Cache != nil {
				key := CacheKey(item.SourceText, item.PrecedingContext, item.FollowingContext, target)
				if err := c.Cache.Store(ctx, key, text); err != nil {
					logging.WarnWithContext(logger, "translation cache write failed", "gapfill_cache_store",
						logging.Error(err),
						logging.String(logging.FieldImpact, "translation is not reused by later runs"),
					)
				}
			}
		}
	}

	logger.Info("gap fill complete",
		logging.Int("gaps", report.Gaps),
		logging.Int("patched", report.Patched),
		logging.Int("remaining", report.Remaining()),
		logging.Int("failed_batches", report.FailedBatches),
		logging.Int("cache_hits", report.CacheHits),
	)
	return out, report
}

// patch replaces the gap's sentinel line. Answers that are blank or still
// contain the sentinel are refused.
func patch(track srt.Track, item GapItem, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || echoesSentinel(text) {
		return false
	}
	track[item.BlockIndex].Lines[item.LineIndex] = text
	return true
}
