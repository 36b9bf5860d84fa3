// Package transcript writes per-file transcripts and reads SRT back.
//
// Text mode writes the recognized text verbatim to <stem>.txt. Subtitle
// mode renders one numbered cue per Segment to <stem>.srt. Both writes are
// atomic (temp file plus rename) and overwrite any previous output. When
// categorization is enabled the file lands in <root>/categorized/<prefix>/.
package transcript
