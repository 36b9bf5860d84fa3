// Package convert turns source audio and video into the intermediate audio
// the transcription engines consume.
//
// All decoding is delegated to ffmpeg. Convert produces a mono 16 kHz WAV
// (pcm_s16le) or a mono MP3, optionally peak-normalized: a volumedetect pass
// measures max_volume and a volume filter shifts the peak to the requested
// headroom. ExtractChunk cuts the fixed-size windows used for subtitles and
// Duration asks ffprobe for the length that drives chunking.
//
// Process execution goes through a Runner so tests can script ffmpeg output
// without the binary installed.
package convert
