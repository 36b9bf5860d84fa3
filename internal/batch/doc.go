// Package batch drives the transcription pipeline over a source directory.
//
// A Runner scans for media, then converts, transcribes and writes each file
// in turn before the next one starts. A file that cannot be converted or
// that yields no speech is logged and skipped; only context cancellation
// stops the batch early. Each file gets a private work directory that is
// removed on every exit path.
//
// Runs over the same source directory are serialized with an advisory file
// lock under <state_dir>/locks, and every file outcome is recorded in the
// history ledger when one is attached. When combining is enabled the
// combine pass runs after the last file.
package batch
