package deliver

import (
	"context"
	"strings"

	"github.com/UserExistsError/conpty"
)

func startCmd(argv []string) (p *process, err error) {
	c := strings.Join(argv, " ")

	var tty *conpty.ConPty
	tty, err = conpty.Start(c)
	if err != nil {
		return
	}

	ch := make(chan struct{})
	go func() {
		code, err := tty.Wait(context.Background())
		if err != nil {
			Debug("deliver: Wait returned with error: %v\n", err)
		}
		Debug("deliver: console exited with code %d\n", code)
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
		kill:    tty.Close,
		release: tty.Close,
	}
	return
}
