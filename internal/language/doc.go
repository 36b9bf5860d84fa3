// Package language normalizes the configured transcription language into the
// ISO 639-1 codes that whisperx and OpenAI-compatible endpoints accept.
//
// Parsing is delegated to golang.org/x/text/language so BCP 47 tags
// ("en-US"), ISO 639-2 codes ("eng") and plain codes ("en") all resolve to
// the same base language. A short table of English names covers values such
// as "english" that users tend to type into config files.
package language
