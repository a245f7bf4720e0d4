package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscribe()
	c.normalizeMerge()
	c.normalizeFill()
	c.normalizeLLM()
	c.normalizeLanguage()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscribe() {
	c.Transcribe.Profile = strings.ToLower(strings.TrimSpace(c.Transcribe.Profile))
	if c.Transcribe.Profile == "" {
		c.Transcribe.Profile = defaultProfile
	}
}

func (c *Config) normalizeMerge() {
	if c.Merge.ChunkSize == 0 {
		c.Merge.ChunkSize = defaultChunkSize
	}
}

func (c *Config) normalizeFill() {
	if c.Fill.BatchSize == 0 {
		c.Fill.BatchSize = defaultFillBatchSize
	}
	if c.Fill.Workers == 0 {
		c.Fill.Workers = defaultFillWorkers
	}
	if c.Fill.RequestsPerMinute == 0 {
		c.Fill.RequestsPerMinute = defaultRequestsPerMinute
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, key := range []string{"AUTOSUB_LLM_API_KEY", "OPENROUTER_API_KEY"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.FallbackModels = normalizeModels(c.LLM.Model, c.LLM.FallbackModels)
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

// normalizeModels trims entries and drops blanks, duplicates, and the primary model.
func normalizeModels(primary string, models []string) []string {
	seen := map[string]struct{}{primary: {}}
	out := make([]string, 0, len(models))
	for _, model := range models {
		model = strings.TrimSpace(model)
		if model == "" {
			continue
		}
		if _, ok := seen[model]; ok {
			continue
		}
		seen[model] = struct{}{}
		out = append(out, model)
	}
	return out
}

func (c *Config) normalizeLanguage() {
	c.Language.Source = strings.TrimSpace(c.Language.Source)
	if c.Language.Source == "" {
		c.Language.Source = defaultSourceLanguage
	}
	c.Language.Target = strings.TrimSpace(c.Language.Target)
	if c.Language.Target == "" {
		c.Language.Target = defaultTargetLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
