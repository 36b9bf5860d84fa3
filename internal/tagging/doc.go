// Package tagging adds or removes a front matter tag across a tree of notes.
package tagging
