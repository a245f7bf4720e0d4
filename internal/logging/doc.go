// Package logging builds the slog loggers used by the autosub commands.
//
// It provides a console handler (coloured level labels on a terminal) and a
// JSON handler, opens the configured outputs, and exposes typed attribute
// helpers plus the warning convention: every WARN line carries event_type,
// error_hint, and impact. Context helpers stamp the per-invocation run id.
package logging
