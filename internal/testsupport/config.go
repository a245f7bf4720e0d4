package testsupport

import (
	"path/filepath"
	"testing"

	"autosub/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The LLM key is cleared so nothing reaches the network unless a test asks
// for it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.LLM.APIKey = ""
	cfgVal.Fill.CacheEnabled = false

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLLM points the gap-fill client at baseURL with a test key.
func WithLLM(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.APIKey = "test"
		b.cfg.LLM.BaseURL = baseURL
		b.cfg.LLM.FallbackModels = nil
	}
}

// WithCache enables the sqlite translation cache.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fill.CacheEnabled = true
	}
}

// WithProfile fixes the chunking profile.
func WithProfile(profile string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcribe.Profile = profile
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
