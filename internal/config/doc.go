// Package config loads, normalizes, and validates autosub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AUTOSUB_LLM_API_KEY, including values from a .env file. The Config type is
// passed explicitly to the subtitle workflow so chunking, alignment, and gap
// fill parameters are never read from globals.
package config
