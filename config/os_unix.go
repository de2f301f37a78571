//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

const invalidNameRunes = ""

// CleanFileName removes characters not allowed in file names on this
// platform. Used when deriving output names for rendered stylesheets.
func CleanFileName(in string) string {
	return cleanFileName(in)
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
