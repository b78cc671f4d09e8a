package deliver

import (
	"io"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/jeffwilliams/astata/internal/config"
)

// process is a running Stata console.
type process struct {
	stdin      io.Writer
	stdout     io.Reader
	terminated func() bool
	kill       func() error
	// release frees the terminal of a process that has exited.
	release func() error
}

type startFunc func(argv []string) (*process, error)

// Console runs Stata in a pseudo terminal and types code into it. Stata is started on the
// first Send and again if it has exited.
type Console struct {
	argv   []string
	output Output
	start  startFunc
	proc   *process
}

func NewConsole(argv []string, output Output) *Console {
	return &Console{argv: argv, output: output, start: startCmd}
}

func (c *Console) Name() string {
	return config.TargetConsole
}

func (c *Console) Capabilities() Capabilities {
	return CapabilitiesOf(config.TargetConsole)
}

func (c *Console) Send(code string) (err error) {
	if c.proc == nil || c.proc.terminated() {
		if c.proc != nil {
			c.proc.release()
		}
		Debug("deliver: starting console '%s'\n", strings.Join(c.argv, " "))
		c.proc, err = c.start(c.argv)
		if err != nil {
			c.proc = nil
			return
		}
		go copyOutput(c.proc.stdout, c.output)
	}

	_, err = io.WriteString(c.proc.stdin, ensureNewline(code))
	return
}

func (c *Console) Close() error {
	if c.proc == nil {
		return nil
	}
	p := c.proc
	c.proc = nil
	if p.terminated() {
		return p.release()
	}
	return p.kill()
}

// copyOutput passes everything read from r to output until r fails.
func copyOutput(r io.Reader, output Output) {
	var buf [4096]byte
	for {
		n, err := r.Read(buf[:])
		if n > 0 && output != nil {
			s := stripansi.Strip(string(buf[:n]))
			s = strings.ReplaceAll(s, "\r\n", "\n")
			if s != "" {
				output(s)
			}
		}
		if err != nil {
			Debug("deliver: output stopped: %v\n", err)
			return
		}
	}
}
