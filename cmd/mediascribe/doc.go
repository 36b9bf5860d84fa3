// Package main hosts the mediascribe CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies per-command
// flag overrides and hands off to the internal packages: batch and watch for
// transcription, combine for concatenation, tagging for front matter edits,
// preflight for status and history for the run ledger.
//
// Keep this package lean: add behavior to the internal packages first, then
// surface it here as a command or flag.
package main
