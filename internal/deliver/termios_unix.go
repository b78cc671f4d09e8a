//go:build linux || darwin

package deliver

import (
	"os"

	"golang.org/x/sys/unix"
)

// setTermios turns off echo so that code sent to the console isn't copied back into the
// output.
func setTermios(tty *os.File, get, set uint) {
	fd := int(tty.Fd())

	termios, err := unix.IoctlGetTermios(fd, get)
	if err != nil {
		Debug("deliver: getting terminal state failed: %s\n", err)
		return
	}

	newState := *termios
	newState.Lflag &^= unix.ECHO
	newState.Lflag |= unix.ICANON | unix.ISIG
	newState.Iflag |= unix.ICRNL
	if err := unix.IoctlSetTermios(fd, set, &newState); err != nil {
		Debug("deliver: setting terminal state failed: %s\n", err)
	}
}
