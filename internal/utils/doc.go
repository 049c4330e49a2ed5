// Package utils provides shared helpers for jsonsig.
//
// # Filesystem Utilities
//
//   - FileExists: distinguishes a missing file from a failed stat
//   - WriteFileAtomic: temp file, fsync, chmod, rename
//
// # String Utilities
//
//   - CharCount: code point length used for payload validation
//   - FormatPaths: formats file paths for human-readable output
//
// # Terminal Utilities
//
//   - IsStderrTerminal: terminal detection via golang.org/x/term
//
// # I/O Utilities
//
//   - ReadStdin: reads piped input for `jsonsig decrypt -`
package utils
