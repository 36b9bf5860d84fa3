// Package history persists a ledger of transcription runs in SQLite.
//
// Each batch opens a run, records one item per media file with its outcome
// (written, skipped or failed) and closes the run with totals. The CLI
// "mediascribe history" command reads it back. The database lives at
// <state_dir>/history.db and uses WAL mode so a watch session and a one-off
// history query can share it.
package history
