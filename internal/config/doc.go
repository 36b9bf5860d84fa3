// Package config loads, normalizes, and validates mediascribe configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and HF_TOKEN. The Config type replaces the hard-coded
// directory, extension and tag constants a one-off script would carry, so
// every entry point receives its settings explicitly.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
