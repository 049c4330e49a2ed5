package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/PolarWolf314/jsonsig/internal/secrets"
	"github.com/PolarWolf314/jsonsig/internal/ui"
	"github.com/PolarWolf314/jsonsig/internal/utils"
	"github.com/briandowns/spinner"
)

// startSpinner draws a spinner on stderr while a key pair is generated. It
// stays hidden in verbose or debug mode, and when stderr is not a terminal.
// A FinalMSG set by the caller is written to out even when the spinner is hidden.
// Returns the spinner and a cleanup function that must run before the
// command writes its result.
func startSpinner(message string, out io.Writer) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(os.Stderr))
	s.Suffix = " " + message

	// Ignore color errors - continue without colored spinner if it fails.
	_ = s.Color("cyan")

	active := !verbose && !debug && utils.IsStderrTerminal()
	if active {
		s.Start()
	}

	cleanup := func() {
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if active {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(out, finalMsg)
		}
	}

	return s, cleanup
}

// keyPairMissing reports whether a sign run will have to generate keys.
// Unreadable paths count as present so ReadKeys reports them.
func keyPairMissing(loc secrets.CacheLocation) bool {
	privatePath, publicPath := loc.Paths()
	for _, path := range []string{privatePath, publicPath} {
		exists, err := utils.FileExists(path)
		if err == nil && !exists {
			return true
		}
	}
	return false
}
