package config

const (
	defaultConfigPath        = "~/.config/autosub/config.toml"
	projectConfigName        = "autosub.toml"
	cacheFileName            = "fill_cache.db"
	defaultOutputDir         = "~/autosub"
	defaultLogDir            = "~/.local/share/autosub/logs"
	defaultCacheDirFallback  = "~/.cache/autosub"
	defaultLogRetentionDays  = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultProfile           = ProfileAuto
	defaultMinOverlapRatio   = 0.3
	defaultMinOverlapSeconds = 0.5
	defaultChunkSize         = 30
	defaultFillBatchSize     = 5
	defaultFillWorkers       = 15
	defaultRequestsPerMinute = 250
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/autosub/autosub"
	defaultLLMTitle          = "autosub gap fill"
	defaultLLMTimeoutSeconds = 60
	defaultSourceLanguage    = "en"
	defaultTargetLanguage    = "zh-Hans"
)

// Profile values accepted by transcribe.profile.
const (
	ProfileAuto   = "auto"
	ProfileFormal = "formal"
	ProfileSpoken = "spoken"
)

var defaultFallbackModels = []string{"google/gemini-2.0-flash-001"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir(),
		},
		Transcribe: Transcribe{
			Profile: defaultProfile,
		},
		Merge: Merge{
			MinOverlapRatio:   defaultMinOverlapRatio,
			MinOverlapSeconds: defaultMinOverlapSeconds,
			ChunkSize:         defaultChunkSize,
		},
		Fill: Fill{
			BatchSize:         defaultFillBatchSize,
			Workers:           defaultFillWorkers,
			RequestsPerMinute: defaultRequestsPerMinute,
			CacheEnabled:      true,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			FallbackModels: append([]string(nil), defaultFallbackModels...),
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Language: Language{
			Source: defaultSourceLanguage,
			Target: defaultTargetLanguage,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
