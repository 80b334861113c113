// Package file keeps user-editable state on the local filesystem: the TOML
// settings file and the prompt templates used for generative extraction.
package file
