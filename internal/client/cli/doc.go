// Package cli provides the clipnote command-line client.
//
// Every command opens the local store described by the configuration,
// loads and hydrates the notes, runs one operation through the note
// service and closes everything again. The shell command keeps the store
// open and reads commands from stdin, which is the only way to work on a
// draft across several steps before saving it.
//
// Configuration is layered: built-in defaults, then the file given with
// --config (JSON or YAML), then any flag set on the command line.
package cli
