// Package llm provides an OpenRouter chat client and the batch generator
// that gap fill uses to translate missing subtitle lines.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Complete: send a prompt, receive plain text.
// Client.CompleteJSON: send system/user prompts, receive a JSON payload.
// Client.HealthCheck: verify API key and primary model.
// BatchGenerator.Generate: run gap-fill tasks on a worker pool.
//
// # Retry and Fallback
//
// Each model is retried on HTTP 408/429/5xx, empty replies and network
// timeouts with exponential backoff (base 1s, max 10s, 3 attempts by
// default). A 429, or any other 4xx, moves straight to the next model in
// FallbackModels. Context cancellation aborts at once.
//
// # Rate Limiting
//
// Limiter spaces request starts evenly across all workers, one slot per
// 60s/requests_per_minute.
package llm
