package ui

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether the given file descriptor refers to a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// StderrFd returns the descriptor progress output is drawn on.
func StderrFd() uintptr {
	return os.Stderr.Fd()
}

// TermWidth returns the terminal width in columns, or 80 if it cannot be determined.
func TermWidth(fd uintptr) int {
	w, _, err := term.GetSize(int(fd))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
