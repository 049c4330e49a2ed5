// Package ui provides semantic text formatting for the human-facing lines
// jsonsig prints to stderr.
//
// Formatters colorize their input when the terminal supports it. When
// NO_COLOR is set, or fatih/color has detected a dumb terminal, they fall
// back to plain decorations instead:
//
//	ui.Code.Sprint("jsonsig --help")   // `jsonsig --help`
//	ui.Path.Sprint("keys/jsonsig.pub") // keys/jsonsig.pub
package ui
