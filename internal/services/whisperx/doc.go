// Package whisperx runs the WhisperX speech-to-text model locally through
// uvx and reads back the plain transcript.
//
// Each call writes WhisperX's JSON output into a scratch directory beside
// the audio file, joins the segment texts and removes the scratch
// directory. An empty transcript is reported as services.ErrUnrecognized.
package whisperx
