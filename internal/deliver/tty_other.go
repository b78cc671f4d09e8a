//go:build !linux && !darwin && !windows

package deliver

import "os"

func setNoEcho(tty *os.File) {}
