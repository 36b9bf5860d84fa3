// Package cloudstt talks to an OpenAI-compatible speech-to-text endpoint
// (POST {base_url}/audio/transcriptions, multipart upload).
//
// Transient failures (408, 429, 5xx and network timeouts) are retried with
// exponential backoff that honours Retry-After. Other 4xx responses fail
// immediately. An empty transcript is reported as services.ErrUnrecognized.
package cloudstt
