// Package monitoring holds the diagnostic logger shared by library packages.
package monitoring

import (
	"io"
	"log"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetOutput routes Logf to w with the given prefix and no timestamps,
// which is how the command-line tools print their progress.
func SetOutput(w io.Writer, prefix string) {
	l := log.New(w, prefix, 0)
	Logf = l.Printf
}
