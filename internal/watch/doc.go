// Package watch keeps transcribing as new media lands in the source
// directory.
//
// fsnotify create and write events for accepted extensions are debounced:
// a file is handed to the processor only after it has been quiet for the
// settle delay, so half-copied recordings are not picked up. Files are
// processed one at a time in the order they settled.
package watch
