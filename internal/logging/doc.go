// Package logger provides leveled logging for jsonsig.
//
// The logger is a plain value passed into the key store and the sign
// workflow. There is no package-level instance, so tests can construct one
// over a buffer without touching global state.
//
// # Verbosity Levels
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Warnings and errors are always shown.
//
// # Output
//
// Every level writes to Logger.Out, defaulting to stderr. Stdout carries
// only the JSON document.
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Reading cached key from %s", path)
package logger
