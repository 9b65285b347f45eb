package scout

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY, indicating that output is being
// displayed directly to a user's terminal rather than piped or redirected.
// Colored rendering is only enabled in that case; CI logs stay plain.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
