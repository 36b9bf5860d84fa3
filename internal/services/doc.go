// Package services holds the small shared vocabulary used by mediascribe's
// service clients: sentinel error markers, the Wrap helper that tags errors
// with component/operation context, and context keys for run and file
// correlation.
//
// External-facing clients (whisperx, cloudstt) live in subpackages and return
// errors wrapped with these markers so the batch runner can decide whether a
// failure is a skip or a hard failure without string matching.
package services
