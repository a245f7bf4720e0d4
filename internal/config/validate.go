package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTranscribe(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateFill(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLanguage(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTranscribe() error {
	switch c.Transcribe.Profile {
	case ProfileAuto, ProfileFormal, ProfileSpoken:
		return nil
	default:
		return fmt.Errorf("transcribe.profile must be one of auto, formal, spoken (got %q)", c.Transcribe.Profile)
	}
}

func (c *Config) validateMerge() error {
	if c.Merge.MinOverlapRatio < 0 || c.Merge.MinOverlapRatio > 1 {
		return errors.New("merge.min_overlap_ratio must be between 0 and 1")
	}
	if c.Merge.MinOverlapSeconds < 0 {
		return errors.New("merge.min_overlap_seconds must be non-negative")
	}
	if c.Merge.ChunkSize < 1 {
		return errors.New("merge.chunk_size must be positive")
	}
	return nil
}

func (c *Config) validateFill() error {
	if c.Fill.BatchSize < 1 {
		return errors.New("fill.batch_size must be positive")
	}
	if c.Fill.Workers < 1 {
		return errors.New("fill.workers must be positive")
	}
	if c.Fill.RequestsPerMinute < 1 {
		return errors.New("fill.requests_per_minute must be positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	parsed, err := url.Parse(c.LLM.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("llm.base_url must be an absolute URL (got %q)", c.LLM.BaseURL)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLanguage() error {
	if _, err := language.Parse(c.Language.Source); err != nil {
		return fmt.Errorf("language.source %q is not a valid BCP-47 tag: %w", c.Language.Source, err)
	}
	if _, err := language.Parse(c.Language.Target); err != nil {
		return fmt.Errorf("language.target %q is not a valid BCP-47 tag: %w", c.Language.Target, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be non-negative")
	}
	return nil
}

// HasLLM reports whether an API key is available for gap filling.
func (c *Config) HasLLM() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}
