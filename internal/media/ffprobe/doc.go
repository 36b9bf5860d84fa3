// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs the binary directly. Callers that manage their own process
// execution (the converter injects a runner for tests) can build the
// argument list with Args and decode the output with Parse.
package ffprobe
