//go:build !windows

package deliver

import (
	"os/exec"

	"github.com/creack/pty"
)

func startCmd(argv []string) (p *process, err error) {
	c := exec.Command(argv[0], argv[1:]...)

	tty, err := pty.Start(c)
	if err != nil {
		return
	}
	setNoEcho(tty)

	ch := make(chan struct{})
	go func() {
		c.Process.Wait()
		close(ch)
	}()

	p = &process{
		stdin:  tty,
		stdout: tty,
		terminated: func() bool {
			select {
			case <-ch:
				return true
			default:
			}
			return false
		},
		kill: func() error {
			err := c.Process.Kill()
			tty.Close()
			return err
		},
		release: tty.Close,
	}
	return
}
