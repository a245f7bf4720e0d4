// Package services defines shared error markers used by the workflow service
// and its external integrations.
//
// Wrap tags a failure with a marker and step context so the CLI can choose an
// exit status with ExitCode. Subpackages hold the integrations themselves,
// such as the llm client.
package services
