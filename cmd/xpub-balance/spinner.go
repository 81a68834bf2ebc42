package main

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// startSpinner draws a progress indicator on f until the returned function is
// called. Nothing is drawn if f is not a terminal.
func startSpinner(f *os.File, msg string) func() {
	if !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}

	s := spinner.New(
		spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f),
	)
	s.Suffix = " " + msg
	s.Start()

	return s.Stop
}
