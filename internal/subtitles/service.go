package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"autosub/internal/config"
	"autosub/internal/fillcache"
	"autosub/internal/gapfill"
	"autosub/internal/language"
	"autosub/internal/logging"
	"autosub/internal/services"
	"autosub/internal/services/llm"
)

var (
	// ErrTranscriptNotFound is returned when the recognizer output is missing.
	ErrTranscriptNotFound = fmt.Errorf("%w: transcript", services.ErrNotFound)
	// ErrInputNotFound is returned when a subtitle input file is missing.
	ErrInputNotFound = fmt.Errorf("%w: subtitle input", services.ErrNotFound)
	// ErrOutputDir is returned when an output directory cannot be created.
	ErrOutputDir = fmt.Errorf("%w: output directory", services.ErrConfiguration)
	// ErrNoTranslation is returned by Merge when no translated track exists.
	ErrNoTranslation = fmt.Errorf("%w: translated track", services.ErrNotFound)
	// ErrInvalidRequest is returned for unusable request parameters.
	ErrInvalidRequest = fmt.Errorf("%w: request", services.ErrValidation)
	// ErrTrackLocked is returned by Fill when another process holds the track.
	ErrTrackLocked = fmt.Errorf("%w: track is being filled", services.ErrConflict)
)

// Service runs the subtitle workflow steps against files on disk.
type Service struct {
	config *config.Config
	logger *slog.Logger

	generator    gapfill.Generator
	cache        gapfill.Cache
	fillOnce     sync.Once
	cacheStore   *fillcache.Store
	generatorSet bool
	cacheSet     bool
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithGenerator overrides the gap-fill generator built from configuration.
// A nil generator disables gap filling.
func WithGenerator(g gapfill.Generator) ServiceOption {
	return func(s *Service) {
		s.generator = g
		s.generatorSet = true
	}
}

// WithCache overrides the translation cache built from configuration. A nil
// cache disables caching.
func WithCache(c gapfill.Cache) ServiceOption {
	return func(s *Service) {
		s.cache = c
		s.cacheSet = true
	}
}

// NewService constructs the workflow service.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	svc := &Service{
		config: cfg,
		logger: logging.NewComponentLogger(logger, "subtitles"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Close releases the translation cache if one was opened.
func (s *Service) Close() error {
	if s == nil || s.cacheStore == nil {
		return nil
	}
	return s.cacheStore.Close()
}

// prepareFill builds the generator and cache from configuration the first
// time gap filling runs. Failures to open the cache are logged and fill runs
// without it.
func (s *Service) prepareFill() {
	s.fillOnce.Do(func() {
		if !s.generatorSet && s.config.HasLLM() {
			client := llm.NewClient(llm.Config{
				APIKey:         s.config.LLM.APIKey,
				BaseURL:        s.config.LLM.BaseURL,
				Model:          s.config.LLM.Model,
				FallbackModels: s.config.LLM.FallbackModels,
				Referer:        s.config.LLM.Referer,
				Title:          s.config.LLM.Title,
				TimeoutSeconds: s.config.LLM.TimeoutSeconds,
			})
			s.generator = &llm.BatchGenerator{
				Client:  client,
				Workers: s.config.Fill.Workers,
				Limiter: llm.NewLimiter(s.config.Fill.RequestsPerMinute),
				Logger:  s.logger,
			}
		}
		if !s.cacheSet && s.config.Fill.CacheEnabled {
			store, err := fillcache.Open(s.config.CachePath())
			if err != nil {
				logging.WarnWithContext(s.logger, "translation cache unavailable", "fill_cache_open",
					logging.Error(err),
					logging.String(logging.FieldPath, s.config.CachePath()),
					logging.String(logging.FieldErrorHint, "check cache_dir permissions or delete the cache file"),
					logging.String(logging.FieldImpact, "gap fill runs without cached translations"),
				)
				return
			}
			s.cacheStore = store
			s.cache = store
		}
	})
}

func (s *Service) coordinator() *gapfill.Coordinator {
	s.prepareFill()
	return &gapfill.Coordinator{
		Generator:      s.generator,
		BatchSize:      s.config.Fill.BatchSize,
		Cache:          s.cache,
		Logger:         s.logger,
		TargetLanguage: s.targetCode(),
		Prompt: gapfill.PromptOptions{
			SourceLanguage: language.DisplayName(s.config.Language.Source),
			TargetLanguage: language.DisplayName(s.config.Language.Target),
		},
	}
}

func (s *Service) targetCode() string {
	if code := language.ToISO2(s.config.Language.Target); code != "" {
		return code
	}
	return "zh"
}

func (s *Service) isTarget(line string) bool {
	return language.HasScript(line, s.config.Language.Target)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputDir, dir, err)
	}
	return nil
}

func requireFile(path string, marker error) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", marker, path)
	}
	return nil
}

// baseName strips the directory, the extension and any of the given
// language or layout suffixes from path.
func baseName(path string, suffixes ...string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	for _, suffix := range suffixes {
		if strings.HasSuffix(strings.ToLower(name), suffix) {
			name = name[:len(name)-len(suffix)]
		}
	}
	return name
}

func fileHasContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func withRunLogger(ctx context.Context, logger *slog.Logger) *slog.Logger {
	return logging.WithContext(ctx, logger)
}
