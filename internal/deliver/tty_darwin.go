package deliver

import (
	"os"

	"golang.org/x/sys/unix"
)

func setNoEcho(tty *os.File) {
	setTermios(tty, unix.TIOCGETA, unix.TIOCSETA)
}
