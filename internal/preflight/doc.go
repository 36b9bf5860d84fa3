// Package preflight provides readiness checks for the external binaries and
// filesystem paths mediascribe depends on.
//
// The batch runner calls CheckSystemDeps before a run so a missing ffmpeg is
// reported once instead of once per file. The CLI "mediascribe status"
// command runs RunAll and renders every result as a table.
package preflight
